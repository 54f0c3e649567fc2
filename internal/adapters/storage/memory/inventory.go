package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic-api/internal/domain/inventory"
)

type InventoryRepository struct {
	mu        sync.RWMutex
	items     map[string]inventory.Item
	movements map[string][]inventory.Movement
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items:     map[string]inventory.Item{},
		movements: map[string][]inventory.Movement{},
	}
}

func (r *InventoryRepository) Create(ctx context.Context, i inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, i.Name) {
			return inventory.ErrNameTaken
		}
	}
	r.items[i.ID] = i
	return nil
}

func (r *InventoryRepository) Update(ctx context.Context, i inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[i.ID]; !ok {
		return inventory.ErrNotFound
	}
	r.items[i.ID] = i
	return nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (inventory.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.items[id]
	return i, ok, nil
}

func (r *InventoryRepository) GetByName(ctx context.Context, name string) (inventory.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, i := range r.items {
		if strings.EqualFold(i.Name, name) {
			return i, true, nil
		}
	}
	return inventory.Item{}, false, nil
}

func (r *InventoryRepository) List(ctx context.Context, f inventory.ListFilter) ([]inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []inventory.Item{}
	for _, i := range r.items {
		if f.OnlyActive && !i.Active {
			continue
		}
		if f.Type != "" && i.Type != f.Type {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// ApplyMovement escribe stock y movimiento bajo el mismo lock, con la
// misma guarda de stock esperado que el adaptador de postgres.
func (r *InventoryRepository) ApplyMovement(ctx context.Context, i inventory.Item, expectedStock int, m inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[i.ID]
	if !ok {
		return inventory.ErrNotFound
	}
	if current.Stock != expectedStock {
		return inventory.ErrStockConflict
	}
	r.items[i.ID] = i
	r.movements[m.ItemID] = append(r.movements[m.ItemID], m)
	return nil
}

func (r *InventoryRepository) ListMovements(ctx context.Context, itemID string) ([]inventory.Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]inventory.Movement{}, r.movements[itemID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InventoryRepository) ListExpiring(ctx context.Context, until time.Time) ([]inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []inventory.Item{}
	for _, i := range r.items {
		if i.Active && i.ExpiresAt != nil && !i.ExpiresAt.After(until) {
			out = append(out, i)
		}
	}
	return out, nil
}
