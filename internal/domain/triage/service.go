package triage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/appointments"
)

var (
	ErrInvalidInput     = errors.New("invalid triage input")
	ErrNotFound         = errors.New("triage not found")
	ErrAlreadyTriaged   = errors.New("appointment already has a triage")
	ErrApptNotFound     = errors.New("appointment not found")
	ErrApptNotTriagable = errors.New("appointment is not open for triage")
	ErrNeedsObservation = errors.New("urgent triage requires observations of at least 10 characters")
)

const minUrgentObservations = 10

// Agenda resuelve citas para validar el triaje.
type Agenda interface {
	GetByID(ctx context.Context, id string) (appointments.Appointment, error)
}

// Service implementa la evaluación de ingreso.
type Service struct {
	repo   Repository
	agenda Agenda
	now    func() time.Time
}

func NewService(repo Repository, agenda Agenda) *Service {
	return &Service{repo: repo, agenda: agenda, now: time.Now}
}

// CreateInput son los datos de un triaje nuevo.
type CreateInput struct {
	AppointmentID string
	Vitals        Vitals
	Observations  string
}

// Create registra el triaje de la cita y asigna su prioridad.
// Cada cita admite un solo triaje.
func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (Triage, error) {
	in.AppointmentID = strings.TrimSpace(in.AppointmentID)
	if in.AppointmentID == "" {
		return Triage{}, fmt.Errorf("%w: appointment_id is required", ErrInvalidInput)
	}
	if err := validateVitals(in.Vitals); err != nil {
		return Triage{}, err
	}

	appt, err := s.agenda.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			return Triage{}, ErrApptNotFound
		}
		return Triage{}, err
	}
	if !appt.Status.Blocking() {
		return Triage{}, ErrApptNotTriagable
	}

	if _, ok, err := s.repo.GetByAppointment(ctx, appt.ID); err != nil {
		return Triage{}, err
	} else if ok {
		return Triage{}, ErrAlreadyTriaged
	}

	priority := Classify(in.Vitals)
	observations := strings.TrimSpace(in.Observations)
	if priority == PriorityUrgent && len([]rune(observations)) < minUrgentObservations {
		return Triage{}, ErrNeedsObservation
	}

	t := Triage{
		ID:            uuid.NewString(),
		AppointmentID: appt.ID,
		PetID:         appt.PetID,
		Vitals:        in.Vitals,
		Priority:      priority,
		Observations:  observations,
		CreatedBy:     createdBy,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Triage{}, err
	}
	return t, nil
}

func validateVitals(v Vitals) error {
	if !ValidState(string(v.GeneralState)) {
		return fmt.Errorf("%w: unknown general state %q", ErrInvalidInput, v.GeneralState)
	}
	if !ValidPain(string(v.Pain)) {
		return fmt.Errorf("%w: unknown pain level %q", ErrInvalidInput, v.Pain)
	}
	if v.HeartRate <= 0 || v.RespRate <= 0 {
		return fmt.Errorf("%w: heart and respiratory rates must be positive", ErrInvalidInput)
	}
	if v.TemperatureC <= 0 {
		return fmt.Errorf("%w: temperature must be positive", ErrInvalidInput)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Triage, error) {
	t, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Triage{}, err
	}
	if !ok {
		return Triage{}, ErrNotFound
	}
	return t, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID string) (Triage, error) {
	t, ok, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return Triage{}, err
	}
	if !ok {
		return Triage{}, ErrNotFound
	}
	return t, nil
}

// Queue devuelve los triajes pendientes ordenados por prioridad y,
// dentro de la misma prioridad, por orden de llegada.
func (s *Service) Queue(ctx context.Context) ([]Triage, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority.Rank() != pending[j].Priority.Rank() {
			return pending[i].Priority.Rank() < pending[j].Priority.Rank()
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// PendingUrgent cuenta los triajes urgentes sin atender.
func (s *Service) PendingUrgent(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range pending {
		if t.Priority == PriorityUrgent {
			n++
		}
	}
	return n, nil
}

// MarkAttended saca el triaje de la cola. Es idempotente.
func (s *Service) MarkAttended(ctx context.Context, id string) (Triage, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return Triage{}, err
	}
	if t.Attended {
		return t, nil
	}
	now := s.now()
	t.Attended = true
	t.AttendedAt = &now
	if err := s.repo.Update(ctx, t); err != nil {
		return Triage{}, err
	}
	return t, nil
}
