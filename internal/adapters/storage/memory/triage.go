package memory

import (
	"context"
	"sync"

	"vet-clinic-api/internal/domain/triage"
)

type TriageRepository struct {
	mu    sync.RWMutex
	items map[string]triage.Triage
}

func NewTriageRepository() *TriageRepository {
	return &TriageRepository{items: map[string]triage.Triage{}}
}

func (r *TriageRepository) Create(ctx context.Context, t triage.Triage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.AppointmentID == t.AppointmentID {
			return triage.ErrAlreadyTriaged
		}
	}
	r.items[t.ID] = t
	return nil
}

func (r *TriageRepository) Update(ctx context.Context, t triage.Triage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return triage.ErrNotFound
	}
	r.items[t.ID] = t
	return nil
}

func (r *TriageRepository) GetByID(ctx context.Context, id string) (triage.Triage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	return t, ok, nil
}

func (r *TriageRepository) GetByAppointment(ctx context.Context, appointmentID string) (triage.Triage, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.items {
		if t.AppointmentID == appointmentID {
			return t, true, nil
		}
	}
	return triage.Triage{}, false, nil
}

func (r *TriageRepository) ListPending(ctx context.Context) ([]triage.Triage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []triage.Triage{}
	for _, t := range r.items {
		if !t.Attended {
			out = append(out, t)
		}
	}
	return out, nil
}
