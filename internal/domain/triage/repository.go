package triage

import "context"

// Repository define la persistencia de triajes.
type Repository interface {
	Create(ctx context.Context, t Triage) error
	Update(ctx context.Context, t Triage) error
	GetByID(ctx context.Context, id string) (Triage, bool, error)
	GetByAppointment(ctx context.Context, appointmentID string) (Triage, bool, error)

	// ListPending devuelve triajes sin atender.
	ListPending(ctx context.Context) ([]Triage, error)
}
