package memory

import (
	"context"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/pets"
)

type PetRepository struct {
	mu    sync.RWMutex
	items map[string]pets.Pet
}

func NewPetRepository() *PetRepository {
	return &PetRepository{items: map[string]pets.Pet{}}
}

func (r *PetRepository) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.microchipTaken(p) {
		return pets.ErrMicrochipTaken
	}
	r.items[p.ID] = p
	return nil
}

func (r *PetRepository) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return pets.ErrNotFound
	}
	if r.microchipTaken(p) {
		return pets.ErrMicrochipTaken
	}
	r.items[p.ID] = p
	return nil
}

// microchipTaken reporta si otra mascota ya usa el microchip de p.
// Los microchips vacíos no cuentan. Llamar con el lock tomado.
func (r *PetRepository) microchipTaken(p pets.Pet) bool {
	if p.Microchip == "" {
		return false
	}
	for _, other := range r.items {
		if other.ID != p.ID && other.Microchip == p.Microchip {
			return true
		}
	}
	return false
}

func (r *PetRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pets.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PetRepository) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []pets.Pet{}
	for _, p := range r.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PetRepository) List(ctx context.Context, onlyActive bool) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pets.Pet, 0, len(r.items))
	for _, p := range r.items {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PetRepository) ExistsDuplicate(ctx context.Context, ownerID, name, species string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.Active && p.OwnerID == ownerID &&
			strings.EqualFold(p.Name, name) && strings.EqualFold(p.Species, species) {
			return true, nil
		}
	}
	return false, nil
}
