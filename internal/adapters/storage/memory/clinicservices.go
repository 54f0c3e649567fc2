package memory

import (
	"context"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/clinicservices"
)

type ClinicServiceRepository struct {
	mu    sync.RWMutex
	items map[string]clinicservices.ClinicService
}

func NewClinicServiceRepository() *ClinicServiceRepository {
	return &ClinicServiceRepository{items: map[string]clinicservices.ClinicService{}}
}

func (r *ClinicServiceRepository) Create(ctx context.Context, s clinicservices.ClinicService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if strings.EqualFold(other.Name, s.Name) {
			return clinicservices.ErrNameTaken
		}
	}
	r.items[s.ID] = s
	return nil
}

func (r *ClinicServiceRepository) Update(ctx context.Context, s clinicservices.ClinicService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return clinicservices.ErrNotFound
	}
	r.items[s.ID] = s
	return nil
}

func (r *ClinicServiceRepository) GetByID(ctx context.Context, id string) (clinicservices.ClinicService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return clinicservices.ClinicService{}, clinicservices.ErrNotFound
	}
	return s, nil
}

func (r *ClinicServiceRepository) List(ctx context.Context, onlyActive bool) ([]clinicservices.ClinicService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]clinicservices.ClinicService, 0, len(r.items))
	for _, s := range r.items {
		if onlyActive && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
