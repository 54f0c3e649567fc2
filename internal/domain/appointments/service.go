package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/clinicservices"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/ports/auth"
)

var (
	ErrInvalidInput   = errors.New("invalid appointment input")
	ErrNotFound       = errors.New("appointment not found")
	ErrPetNotFound    = errors.New("pet not found or inactive")
	ErrVetNotFound    = errors.New("vet not found or inactive")
	ErrServiceGone    = errors.New("service not found or inactive")
	ErrTooSoon        = errors.New("appointments require at least 4 hours notice")
	ErrRescheduleLate = errors.New("reschedule requires at least 2 hours before the appointment")
	ErrVetBusy        = errors.New("vet already has an appointment in that slot")
)

// Event identifica los hechos de agenda que disparan notificaciones.
type Event string

const (
	EventScheduled   Event = "scheduled"
	EventConfirmed   Event = "confirmed"
	EventCancelled   Event = "cancelled"
	EventRescheduled Event = "rescheduled"
)

// PetDirectory resuelve mascotas registradas.
type PetDirectory interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

// StaffDirectory resuelve usuarios del personal.
type StaffDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// Catalog resuelve los servicios ofrecidos por la clínica.
type Catalog interface {
	GetByID(ctx context.Context, id string) (clinicservices.ClinicService, error)
}

// Notifier recibe eventos de agenda. Puede ser nil.
type Notifier interface {
	AppointmentEvent(ctx context.Context, event Event, appt Appointment)
}

// Service implementa la lógica de agenda.
type Service struct {
	repo    Repository
	pets    PetDirectory
	staff   StaffDirectory
	catalog Catalog
	notify  Notifier
	now     func() time.Time
}

func NewService(repo Repository, pd PetDirectory, sd StaffDirectory, cat Catalog, notify Notifier) *Service {
	return &Service{
		repo:    repo,
		pets:    pd,
		staff:   sd,
		catalog: cat,
		notify:  notify,
		now:     time.Now,
	}
}

// CreateInput son los datos para agendar una cita.
type CreateInput struct {
	PetID       string
	VetID       string
	ServiceID   string
	ScheduledAt time.Time
	Reason      string
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (Appointment, error) {
	in.PetID = strings.TrimSpace(in.PetID)
	in.VetID = strings.TrimSpace(in.VetID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	if in.PetID == "" || in.VetID == "" || in.ServiceID == "" || in.ScheduledAt.IsZero() {
		return Appointment{}, fmt.Errorf("%w: pet_id, vet_id, service_id and scheduled_at are required", ErrInvalidInput)
	}

	now := s.now()
	if !meetsScheduleLead(now, in.ScheduledAt) {
		return Appointment{}, ErrTooSoon
	}

	pet, err := s.pets.GetByID(ctx, in.PetID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return Appointment{}, ErrPetNotFound
		}
		return Appointment{}, err
	}
	if !pet.Active {
		return Appointment{}, ErrPetNotFound
	}

	vet, err := s.staff.GetByID(ctx, in.VetID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Appointment{}, ErrVetNotFound
		}
		return Appointment{}, err
	}
	if !vet.Active || vet.Role != auth.RoleVet {
		return Appointment{}, ErrVetNotFound
	}

	svc, err := s.catalog.GetByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, clinicservices.ErrNotFound) {
			return Appointment{}, ErrServiceGone
		}
		return Appointment{}, err
	}
	if !svc.Active {
		return Appointment{}, ErrServiceGone
	}

	if err := s.checkAvailability(ctx, in.VetID, in.ScheduledAt, svc.DurationMinutes, ""); err != nil {
		return Appointment{}, err
	}

	appt := Appointment{
		ID:              uuid.NewString(),
		PetID:           in.PetID,
		VetID:           in.VetID,
		ServiceID:       in.ServiceID,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: svc.DurationMinutes,
		Status:          StatusScheduled,
		Reason:          strings.TrimSpace(in.Reason),
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return Appointment{}, err
	}
	s.emit(ctx, EventScheduled, appt)
	return appt, nil
}

// checkAvailability valida que el veterinario no tenga otra cita activa
// que se cruce con el intervalo propuesto. exclude permite omitir la
// propia cita al reprogramar.
func (s *Service) checkAvailability(ctx context.Context, vetID string, start time.Time, durationMinutes int, exclude string) error {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	busy, err := s.repo.ListBlockingByVet(ctx, vetID, start, end)
	if err != nil {
		return err
	}
	for _, b := range busy {
		if b.ID == exclude {
			continue
		}
		if overlaps(start, end, b.ScheduledAt, b.EndsAt()) {
			return ErrVetBusy
		}
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	appt, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	return s.repo.List(ctx, f)
}

// ListByOwner devuelve las citas de todas las mascotas del propietario.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	ownerPets, err := s.pets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := []Appointment{}
	for _, p := range ownerPets {
		appts, err := s.repo.List(ctx, ListFilter{PetID: p.ID})
		if err != nil {
			return nil, err
		}
		out = append(out, appts...)
	}
	return out, nil
}

func (s *Service) Confirm(ctx context.Context, id string) (Appointment, error) {
	return s.advance(ctx, id, StatusConfirmed, EventConfirmed)
}

func (s *Service) Start(ctx context.Context, id string) (Appointment, error) {
	return s.advance(ctx, id, StatusInProgress, "")
}

func (s *Service) Complete(ctx context.Context, id string, notes string) (Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if err := appt.transition(StatusCompleted); err != nil {
		return Appointment{}, err
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		appt.Notes = notes
	}
	appt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Cancel cancela la cita. Con menos de 4 horas de anticipación queda
// registrada como cancelación tardía.
func (s *Service) Cancel(ctx context.Context, id string) (Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !appt.Cancellable() {
		return Appointment{}, ErrBadTransition
	}
	now := s.now()
	target := StatusCancelled
	if isLateCancel(now, appt.ScheduledAt) {
		target = StatusCancelledLate
		appt.LateCancellation = true
	}
	if err := appt.transition(target); err != nil {
		return Appointment{}, err
	}
	appt.UpdatedAt = now
	if err := s.repo.Update(ctx, appt); err != nil {
		return Appointment{}, err
	}
	s.emit(ctx, EventCancelled, appt)
	return appt, nil
}

// Reschedule mueve la cita a una nueva fecha. Solo se permite hasta
// 2 horas antes de la cita vigente, y la nueva fecha debe cumplir la
// anticipación mínima de agendamiento.
func (s *Service) Reschedule(ctx context.Context, id string, newTime time.Time) (Appointment, error) {
	if newTime.IsZero() {
		return Appointment{}, fmt.Errorf("%w: scheduled_at is required", ErrInvalidInput)
	}
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !appt.Cancellable() {
		return Appointment{}, ErrBadTransition
	}
	now := s.now()
	if !meetsRescheduleLead(now, appt.ScheduledAt) {
		return Appointment{}, ErrRescheduleLate
	}
	if !meetsScheduleLead(now, newTime) {
		return Appointment{}, ErrTooSoon
	}
	if err := s.checkAvailability(ctx, appt.VetID, newTime, appt.DurationMinutes, appt.ID); err != nil {
		return Appointment{}, err
	}
	appt.ScheduledAt = newTime
	appt.UpdatedAt = now
	if err := s.repo.Update(ctx, appt); err != nil {
		return Appointment{}, err
	}
	s.emit(ctx, EventRescheduled, appt)
	return appt, nil
}

func (s *Service) advance(ctx context.Context, id string, to Status, event Event) (Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if err := appt.transition(to); err != nil {
		return Appointment{}, err
	}
	appt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return Appointment{}, err
	}
	s.emit(ctx, event, appt)
	return appt, nil
}

func (s *Service) emit(ctx context.Context, event Event, appt Appointment) {
	if s.notify == nil || event == "" {
		return
	}
	s.notify.AppointmentEvent(ctx, event, appt)
}
