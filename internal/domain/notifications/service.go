package notifications

import (
	"context"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/inventory"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/mail"
)

// Service arma y envía los correos de la clínica. Un fallo de envío
// nunca corta la operación que lo originó: solo se registra.
type Service struct {
	sender mail.Sender
	pets   *pets.Service
	owners *owners.Service
	log    *logger.Logger

	// Destinatarios de las alertas internas de inventario.
	alertEmails []string
}

func NewService(sender mail.Sender, petsSvc *pets.Service, ownersSvc *owners.Service, alertEmails []string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		sender:      sender,
		pets:        petsSvc,
		owners:      ownersSvc,
		log:         log,
		alertEmails: alertEmails,
	}
}

// AppointmentEvent envía el correo del evento al propietario de la
// mascota de la cita.
func (s *Service) AppointmentEvent(ctx context.Context, event appointments.Event, appt appointments.Appointment) {
	if s.sender == nil {
		return
	}

	pet, err := s.pets.GetByID(ctx, appt.PetID)
	if err != nil {
		s.log.Warn().Err(err).Str("pet_id", appt.PetID).Msg("notification skipped: pet lookup failed")
		return
	}
	owner, err := s.owners.GetByID(ctx, pet.OwnerID)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", pet.OwnerID).Msg("notification skipped: owner lookup failed")
		return
	}
	if owner.Email == "" {
		return
	}

	subject, body, ok := renderAppointment(event, appt, owner.Name, pet.Name)
	if !ok {
		s.log.Warn().Str("event", string(event)).Msg("no template for appointment event")
		return
	}

	msg := mail.Message{To: []string{owner.Email}, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).
			Str("event", string(event)).
			Str("appointment_id", appt.ID).
			Msg("appointment notification failed")
	}
}

// LowStock avisa al personal configurado que un producto quedó en o
// bajo su mínimo.
func (s *Service) LowStock(ctx context.Context, item inventory.Item) {
	if s.sender == nil || len(s.alertEmails) == 0 {
		return
	}

	subject, body, err := renderLowStock(item)
	if err != nil {
		s.log.Error().Err(err).Msg("low stock template failed")
		return
	}

	msg := mail.Message{To: s.alertEmails, Subject: subject, Body: body}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("item", item.Name).Msg("low stock notification failed")
	}
}
