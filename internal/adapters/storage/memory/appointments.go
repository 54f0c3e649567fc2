package memory

import (
	"context"
	"sync"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentRepository struct {
	mu    sync.RWMutex
	items map[string]appointments.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{items: map[string]appointments.Appointment{}}
}

func (r *AppointmentRepository) Create(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
	return nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return appointments.ErrNotFound
	}
	r.items[a.ID] = a
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (appointments.Appointment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	return a, ok, nil
}

func (r *AppointmentRepository) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []appointments.Appointment{}
	for _, a := range r.items {
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		if f.VetID != "" && a.VetID != f.VetID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && a.ScheduledAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !a.ScheduledAt.Before(f.To) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AppointmentRepository) ListBlockingByVet(ctx context.Context, vetID string, from, to time.Time) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []appointments.Appointment{}
	for _, a := range r.items {
		if a.VetID != vetID || !a.Status.Blocking() {
			continue
		}
		if a.ScheduledAt.Before(to) && from.Before(a.EndsAt()) {
			out = append(out, a)
		}
	}
	return out, nil
}
