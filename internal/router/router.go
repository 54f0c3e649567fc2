// Package router compone el árbol HTTP de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"vet-clinic-api/docs"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/clinicservices"
	"vet-clinic-api/internal/domain/dashboard"
	"vet-clinic-api/internal/domain/histories"
	"vet-clinic-api/internal/domain/inventory"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/triage"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/auth"
)

// Deps son los servicios ya armados que el router expone.
type Deps struct {
	Log *logger.Logger

	// Verifier nil habilita el modo debug por cabeceras.
	Verifier auth.TokenVerifier
	Issuer   auth.TokenIssuer

	AllowedOrigins []string

	Users          *users.Service
	Owners         *owners.Service
	Pets           *pets.Service
	ClinicServices *clinicservices.Service
	Appointments   *appointments.Service
	Histories      *histories.Service
	Triage         *triage.Service
	Inventory      *inventory.Service
	Dashboard      *dashboard.Service
}

func New(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/api/docs/doc.json"),
		))
		api.Get("/redoc", docs.RedocHandler())

		api.Route("/v1", func(v1 chi.Router) {
			v1.Use(middleware.AuthContext(d.Verifier))

			users.RegisterAuthRoutes(v1, d.Users, d.Issuer)
			users.RegisterRoutes(v1, d.Users)
			owners.RegisterRoutes(v1, d.Owners)
			pets.RegisterRoutes(v1, d.Pets, d.Owners)
			clinicservices.RegisterRoutes(v1, d.ClinicServices)
			appointments.RegisterRoutes(v1, d.Appointments, d.Owners)
			histories.RegisterRoutes(v1, d.Histories, d.Pets, d.Owners)
			triage.RegisterRoutes(v1, d.Triage)
			inventory.RegisterRoutes(v1, d.Inventory)
			dashboard.RegisterRoutes(v1, d.Dashboard)
		})
	})

	return r
}
