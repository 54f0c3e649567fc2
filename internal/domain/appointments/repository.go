package appointments

import (
	"context"
	"time"
)

// ListFilter acota el listado de citas.
type ListFilter struct {
	PetID  string
	VetID  string
	Status Status
	From   time.Time
	To     time.Time
}

// Repository define la persistencia de citas.
type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, bool, error)
	List(ctx context.Context, f ListFilter) ([]Appointment, error)

	// ListBlockingByVet devuelve las citas del veterinario que ocupan
	// agenda (scheduled, confirmed, in_progress) y cuyo intervalo se
	// cruza con [from, to).
	ListBlockingByVet(ctx context.Context, vetID string, from, to time.Time) ([]Appointment, error)
}
