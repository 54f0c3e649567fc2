package pets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) List(ctx context.Context, onlyActive bool) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *testRepo) ExistsDuplicate(ctx context.Context, ownerID, name, species string) (bool, error) {
	for _, p := range r.byID {
		if p.OwnerID == ownerID && p.Active &&
			strings.EqualFold(p.Name, name) && strings.EqualFold(p.Species, species) {
			return true, nil
		}
	}
	return false, nil
}

type testHistoryCreator struct {
	petIDs []string
	err    error
}

func (h *testHistoryCreator) CreateForPet(ctx context.Context, petID string) error {
	if h.err != nil {
		return h.err
	}
	h.petIDs = append(h.petIDs, petID)
	return nil
}

func TestService_Create_AutoCreatesHistory(t *testing.T) {
	repo := newTestRepo()
	hc := &testHistoryCreator{}
	svc := NewService(repo, hc)

	p, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1",
		Name:    "Milo",
		Species: "Perro",
		Breed:   "mestizo",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.Species != "perro" {
		t.Fatalf("expected normalized species, got %q", p.Species)
	}
	if len(hc.petIDs) != 1 || hc.petIDs[0] != p.ID {
		t.Fatalf("expected history created for %s, got %v", p.ID, hc.petIDs)
	}
}

func TestService_Create_UndoneWhenHistoryFails(t *testing.T) {
	repo := newTestRepo()
	hc := &testHistoryCreator{err: errors.New("history insert failed")}
	svc := NewService(repo, hc)

	_, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1",
		Name:    "Milo",
		Species: "perro",
	})
	if err == nil {
		t.Fatal("expected error when history creation fails")
	}

	// El alta se deshizo: no queda una mascota sin historia.
	left, _ := repo.List(context.Background(), false)
	if len(left) != 0 {
		t.Fatalf("expected no pets persisted, got %d", len(left))
	}
}

func TestService_Create_DuplicateNameSpeciesPerOwner(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, &testHistoryCreator{})

	in := CreateInput{OwnerID: "owner-1", Name: "Milo", Species: "perro"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Mismo nombre+especie, mismo dueño => conflicto.
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrDuplicatePet) {
		t.Fatalf("expected ErrDuplicatePet, got %v", err)
	}

	// Mismo nombre, otra especie => permitido.
	if _, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1", Name: "Milo", Species: "gato",
	}); err != nil {
		t.Fatalf("same name different species: %v", err)
	}

	// Mismo nombre+especie, otro dueño => permitido.
	if _, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-2", Name: "Milo", Species: "perro",
	}); err != nil {
		t.Fatalf("same name different owner: %v", err)
	}
}

func TestService_Create_RejectsFutureBirthDate(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	future := now.AddDate(1, 0, 0)
	_, err := svc.Create(context.Background(), CreateInput{
		OwnerID:   "owner-1",
		Name:      "Milo",
		Species:   "perro",
		BirthDate: &future,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Deactivate_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1", Name: "Nina", Species: "gato",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.Deactivate(context.Background(), p.ID)
	if err != nil || first.Active {
		t.Fatalf("Deactivate: %v active=%v", err, first.Active)
	}
	second, err := svc.Deactivate(context.Background(), p.ID)
	if err != nil || second.Active {
		t.Fatalf("second Deactivate: %v active=%v", err, second.Active)
	}
}

func TestPet_Age(t *testing.T) {
	at := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	bd := time.Date(2020, 6, 16, 0, 0, 0, 0, time.UTC)
	p := Pet{BirthDate: &bd}
	if got := p.Age(at); got != 5 {
		t.Fatalf("expected age 5 (day before birthday), got %d", got)
	}

	bd2 := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	p2 := Pet{BirthDate: &bd2}
	if got := p2.Age(at); got != 6 {
		t.Fatalf("expected age 6 (on birthday), got %d", got)
	}

	if got := (Pet{}).Age(at); got != -1 {
		t.Fatalf("expected -1 without birth date, got %d", got)
	}
}
