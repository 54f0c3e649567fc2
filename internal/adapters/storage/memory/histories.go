package memory

import (
	"context"
	"sort"
	"sync"

	"vet-clinic-api/internal/domain/histories"
)

type HistoryRepository struct {
	mu            sync.RWMutex
	items         map[string]histories.MedicalHistory
	consultations map[string][]histories.Consultation
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		items:         map[string]histories.MedicalHistory{},
		consultations: map[string][]histories.Consultation{},
	}
}

func (r *HistoryRepository) Create(ctx context.Context, h histories.MedicalHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.Number == h.Number {
			return histories.ErrNumberConflict
		}
		if other.PetID == h.PetID {
			return histories.ErrAlreadyExists
		}
	}
	r.items[h.ID] = h
	return nil
}

func (r *HistoryRepository) Update(ctx context.Context, h histories.MedicalHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[h.ID]; !ok {
		return histories.ErrNotFound
	}
	r.items[h.ID] = h
	return nil
}

func (r *HistoryRepository) GetByID(ctx context.Context, id string) (histories.MedicalHistory, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.items[id]
	return h, ok, nil
}

func (r *HistoryRepository) GetByPet(ctx context.Context, petID string) (histories.MedicalHistory, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.items {
		if h.PetID == petID {
			return h, true, nil
		}
	}
	return histories.MedicalHistory{}, false, nil
}

func (r *HistoryRepository) List(ctx context.Context, onlyActive bool) ([]histories.MedicalHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []histories.MedicalHistory{}
	for _, h := range r.items {
		if onlyActive && !h.Active {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *HistoryRepository) MaxSequence(ctx context.Context, year int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, h := range r.items {
		y, seq, ok := histories.ParseNumber(h.Number)
		if ok && y == year && seq > max {
			max = seq
		}
	}
	return max, nil
}

func (r *HistoryRepository) AddConsultation(ctx context.Context, c histories.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consultations[c.HistoryID] = append(r.consultations[c.HistoryID], c)
	return nil
}

func (r *HistoryRepository) ListConsultations(ctx context.Context, historyID string) ([]histories.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]histories.Consultation{}, r.consultations[historyID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
