package clinicservices

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]ClinicService
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]ClinicService{}}
}

func (r *testRepo) Create(ctx context.Context, cs ClinicService) error {
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Name, cs.Name) {
			return ErrNameTaken
		}
	}
	r.byID[cs.ID] = cs
	return nil
}

func (r *testRepo) Update(ctx context.Context, cs ClinicService) error {
	if _, ok := r.byID[cs.ID]; !ok {
		return ErrNotFound
	}
	r.byID[cs.ID] = cs
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (ClinicService, error) {
	cs, ok := r.byID[id]
	if !ok {
		return ClinicService{}, ErrNotFound
	}
	return cs, nil
}

func (r *testRepo) List(ctx context.Context, onlyActive bool) ([]ClinicService, error) {
	out := make([]ClinicService, 0)
	for _, cs := range r.byID {
		if onlyActive && !cs.Active {
			continue
		}
		out = append(out, cs)
	}
	return out, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()

	cs, err := svc.Create(context.Background(), CreateInput{
		Name: "Consulta general",
		Cost: 50,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cs.DurationMinutes != defaultDurationMinutes {
		t.Errorf("expected default duration, got %d", cs.DurationMinutes)
	}
	if !cs.Active || cs.CreatedBy != "admin-1" {
		t.Errorf("unexpected service: %+v", cs)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateInput{Cost: 10}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Baño", Cost: -1}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative cost: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Baño", DurationMinutes: -5}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative duration: expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_DuplicateName(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Vacunación"}, "admin-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "vacunación"}, "admin-1"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()

	cs, err := svc.Create(context.Background(), CreateInput{Name: "Baño", Cost: 20}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	duration := 45
	cost := 25.5
	got, err := svc.Update(context.Background(), cs.ID, UpdateInput{
		DurationMinutes: &duration,
		Cost:            &cost,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DurationMinutes != 45 || got.Cost != 25.5 {
		t.Errorf("unexpected update result: %+v", got)
	}

	bad := 0
	if _, err := svc.Update(context.Background(), cs.ID, UpdateInput{DurationMinutes: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero duration should be rejected, got %v", err)
	}
}

func TestService_Deactivate(t *testing.T) {
	svc, _ := newTestService()

	cs, err := svc.Create(context.Background(), CreateInput{Name: "Peluquería"}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Deactivate(context.Background(), cs.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.Active {
		t.Error("service should be inactive")
	}

	// Idempotente
	if again, err := svc.Deactivate(context.Background(), cs.ID); err != nil || again.Active {
		t.Fatalf("second deactivate: %v active=%v", err, again.Active)
	}

	active, err := svc.List(context.Background(), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deactivated service still listed as active: %v", active)
	}
}
