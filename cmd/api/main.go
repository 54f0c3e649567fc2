package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vet-clinic-api/internal/adapters/auth/jwtauth"
	"vet-clinic-api/internal/adapters/mail/console"
	smtpmail "vet-clinic-api/internal/adapters/mail/smtp"
	"vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clinicservices"
	"vet-clinic-api/internal/domain/dashboard"
	"vet-clinic-api/internal/domain/histories"
	"vet-clinic-api/internal/domain/inventory"
	"vet-clinic-api/internal/domain/notifications"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/triage"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/mail"
	"vet-clinic-api/internal/router"
	"vet-clinic-api/migrations"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("vet-clinic-api", "info").Fatal().Err(err).Msg("config")
	}

	log := logger.New(cfg.App.Name, cfg.App.LogLevel)
	log.Info().Str("version", cfg.App.Version).Msg("starting")

	ctx := context.Background()

	// Sin base de datos no hay servicio.
	db, err := postgres.Open(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	tokens, err := jwtauth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	if err != nil {
		log.Fatal().Err(err).Msg("jwt manager")
	}

	var sender mail.Sender
	if cfg.SMTP.Configured() {
		sender = smtpmail.New(cfg.SMTP.Addr(), cfg.SMTP.From, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.Host)
	} else {
		log.Warn().Msg("smtp not configured, mail goes to the log")
		sender = console.New(log)
	}

	// Repositorios.
	usersRepo := postgres.NewUserRepository(db)
	ownersRepo := postgres.NewOwnerRepository(db)
	petsRepo := postgres.NewPetRepository(db)
	servicesRepo := postgres.NewClinicServiceRepository(db)
	apptsRepo := postgres.NewAppointmentRepository(db)
	historiesRepo := postgres.NewHistoryRepository(db)
	triageRepo := postgres.NewTriageRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)

	// Servicios. El orden respeta las dependencias entre módulos.
	usersSvc := users.NewService(usersRepo)
	ownersSvc := owners.NewService(ownersRepo)
	historiesSvc := histories.NewService(historiesRepo)
	petsSvc := pets.NewService(petsRepo, historiesSvc)
	servicesSvc := clinicservices.NewService(servicesRepo)

	notifier := notifications.NewService(sender, petsSvc, ownersSvc, cfg.SMTP.AlertRecipients, log)

	apptsSvc := appointments.NewService(apptsRepo, petsSvc, usersSvc, servicesSvc, notifier)
	triageSvc := triage.NewService(triageRepo, apptsSvc)
	inventorySvc := inventory.NewService(inventoryRepo, notifier)
	dashboardSvc := dashboard.NewService(apptsSvc, triageSvc, inventorySvc, petsSvc, ownersSvc)

	handler := router.New(router.Deps{
		Log:            log,
		Verifier:       tokens,
		Issuer:         tokens,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Users:          usersSvc,
		Owners:         ownersSvc,
		Pets:           petsSvc,
		ClinicServices: servicesSvc,
		Appointments:   apptsSvc,
		Histories:      historiesSvc,
		Triage:         triageSvc,
		Inventory:      inventorySvc,
		Dashboard:      dashboardSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
