package memory

import (
	"context"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/owners"
)

type OwnerRepository struct {
	mu    sync.RWMutex
	items map[string]owners.Owner
}

func NewOwnerRepository() *OwnerRepository {
	return &OwnerRepository{items: map[string]owners.Owner{}}
}

func (r *OwnerRepository) Create(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.Document == o.Document {
			return owners.ErrDocumentTaken
		}
		if strings.EqualFold(other.Email, o.Email) {
			return owners.ErrEmailTaken
		}
	}
	r.items[o.ID] = o
	return nil
}

func (r *OwnerRepository) Update(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; !ok {
		return owners.ErrNotFound
	}
	r.items[o.ID] = o
	return nil
}

func (r *OwnerRepository) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.items {
		if strings.EqualFold(o.Email, email) {
			return o, nil
		}
	}
	return owners.Owner{}, owners.ErrNotFound
}

func (r *OwnerRepository) List(ctx context.Context, onlyActive bool) ([]owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]owners.Owner, 0, len(r.items))
	for _, o := range r.items {
		if onlyActive && !o.Active {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OwnerRepository) Search(ctx context.Context, q string) ([]owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q = strings.ToLower(q)
	var out []owners.Owner
	for _, o := range r.items {
		if strings.Contains(strings.ToLower(o.Name), q) ||
			strings.Contains(strings.ToLower(o.Email), q) ||
			strings.Contains(strings.ToLower(o.Document), q) {
			out = append(out, o)
		}
	}
	return out, nil
}
