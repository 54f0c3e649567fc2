package appointments

import "time"

// Status define los estados de una cita.
type Status string

const (
	StatusScheduled     Status = "scheduled"
	StatusConfirmed     Status = "confirmed"
	StatusInProgress    Status = "in_progress"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	StatusCancelledLate Status = "cancelled_late"
)

// ValidStatus reporta si s es un estado conocido.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusCancelledLate:
		return true
	}
	return false
}

// Blocking reporta si la cita ocupa agenda del veterinario
// (cuenta para el chequeo de disponibilidad).
func (s Status) Blocking() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// Terminal reporta si el estado no admite más transiciones.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusCancelledLate:
		return true
	}
	return false
}

// Appointment representa una cita veterinaria.
type Appointment struct {
	ID string

	PetID     string
	VetID     string
	ServiceID string

	ScheduledAt     time.Time
	DurationMinutes int // copiado del servicio al agendar

	Status Status
	Reason string
	Notes  string

	// Cancelación con menos de 4 horas de anticipación.
	LateCancellation bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// EndsAt devuelve el fin estimado de la cita.
func (a Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
