package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/clinicservices"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/ports/auth"
)

type testRepo struct {
	items map[string]Appointment
}

func newTestRepo() *testRepo {
	return &testRepo{items: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	r.items[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.items[a.ID]; !ok {
		return errors.New("missing appointment")
	}
	r.items[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, bool, error) {
	a, ok := r.items[id]
	return a, ok, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	var out []Appointment
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
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) ListBlockingByVet(ctx context.Context, vetID string, from, to time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.items {
		if a.VetID != vetID || !a.Status.Blocking() {
			continue
		}
		if overlaps(a.ScheduledAt, a.EndsAt(), from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type testDirectory struct {
	pets     map[string]pets.Pet
	users    map[string]users.User
	services map[string]clinicservices.ClinicService
}

func (d *testDirectory) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := d.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (d *testDirectory) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	var out []pets.Pet
	for _, p := range d.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type testStaff struct{ dir *testDirectory }

func (s testStaff) GetByID(ctx context.Context, id string) (users.User, error) {
	u, ok := s.dir.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type testCatalog struct{ dir *testDirectory }

func (c testCatalog) GetByID(ctx context.Context, id string) (clinicservices.ClinicService, error) {
	svc, ok := c.dir.services[id]
	if !ok {
		return clinicservices.ClinicService{}, clinicservices.ErrNotFound
	}
	return svc, nil
}

type testNotifier struct {
	events []Event
}

func (n *testNotifier) AppointmentEvent(ctx context.Context, event Event, appt Appointment) {
	n.events = append(n.events, event)
}

var testBase = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo, *testNotifier) {
	dir := &testDirectory{
		pets: map[string]pets.Pet{
			"pet-1": {ID: "pet-1", OwnerID: "owner-1", Name: "Milo", Species: "perro", Active: true},
			"pet-2": {ID: "pet-2", OwnerID: "owner-2", Name: "Nina", Species: "gato", Active: true},
		},
		users: map[string]users.User{
			"vet-1":   {ID: "vet-1", Name: "Dra. Rojas", Role: auth.RoleVet, Active: true},
			"vet-2":   {ID: "vet-2", Name: "Dr. Soto", Role: auth.RoleVet, Active: false},
			"admin-1": {ID: "admin-1", Name: "Admin", Role: auth.RoleSuperadmin, Active: true},
		},
		services: map[string]clinicservices.ClinicService{
			"svc-1": {ID: "svc-1", Name: "Consulta general", DurationMinutes: 30, Active: true},
			"svc-2": {ID: "svc-2", Name: "Baño medicado", DurationMinutes: 60, Active: false},
		},
	}
	repo := newTestRepo()
	notifier := &testNotifier{}
	svc := NewService(repo, dir, testStaff{dir}, testCatalog{dir}, notifier)
	svc.now = func() time.Time { return testBase }
	return svc, repo, notifier
}

func mustCreate(t *testing.T, svc *Service, at time.Time) Appointment {
	t.Helper()
	appt, err := svc.Create(context.Background(), CreateInput{
		PetID:       "pet-1",
		VetID:       "vet-1",
		ServiceID:   "svc-1",
		ScheduledAt: at,
		Reason:      "control",
	}, "admin-1")
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

func TestService_Create(t *testing.T) {
	svc, _, notifier := newTestService()

	appt := mustCreate(t, svc, testBase.Add(5*time.Hour))
	if appt.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", appt.Status)
	}
	if appt.DurationMinutes != 30 {
		t.Fatalf("expected duration copied from service, got %d", appt.DurationMinutes)
	}
	if len(notifier.events) != 1 || notifier.events[0] != EventScheduled {
		t.Fatalf("expected scheduled event, got %v", notifier.events)
	}
}

func TestService_Create_MinimumLead(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-1", VetID: "vet-1", ServiceID: "svc-1",
		ScheduledAt: testBase.Add(3 * time.Hour),
	}, "admin-1")
	if !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected ErrTooSoon, got %v", err)
	}

	// Exactamente 4 horas sí se permite.
	if _, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-1", VetID: "vet-1", ServiceID: "svc-1",
		ScheduledAt: testBase.Add(4 * time.Hour),
	}, "admin-1"); err != nil {
		t.Fatalf("exactly 4h ahead should be allowed: %v", err)
	}
}

func TestService_Create_Validations(t *testing.T) {
	svc, _, _ := newTestService()
	at := testBase.Add(5 * time.Hour)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"unknown pet", CreateInput{PetID: "pet-x", VetID: "vet-1", ServiceID: "svc-1", ScheduledAt: at}, ErrPetNotFound},
		{"inactive vet", CreateInput{PetID: "pet-1", VetID: "vet-2", ServiceID: "svc-1", ScheduledAt: at}, ErrVetNotFound},
		{"not a vet", CreateInput{PetID: "pet-1", VetID: "admin-1", ServiceID: "svc-1", ScheduledAt: at}, ErrVetNotFound},
		{"inactive service", CreateInput{PetID: "pet-1", VetID: "vet-1", ServiceID: "svc-2", ScheduledAt: at}, ErrServiceGone},
		{"missing fields", CreateInput{PetID: "pet-1", ScheduledAt: at}, ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), c.in, "admin-1"); !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestService_Create_VetAvailability(t *testing.T) {
	svc, _, _ := newTestService()
	start := testBase.Add(5 * time.Hour)
	mustCreate(t, svc, start)

	// Cruce parcial con la cita existente.
	_, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-2", VetID: "vet-1", ServiceID: "svc-1",
		ScheduledAt: start.Add(15 * time.Minute),
	}, "admin-1")
	if !errors.Is(err, ErrVetBusy) {
		t.Fatalf("expected ErrVetBusy, got %v", err)
	}

	// Intervalos contiguos no chocan.
	if _, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-2", VetID: "vet-1", ServiceID: "svc-1",
		ScheduledAt: start.Add(30 * time.Minute),
	}, "admin-1"); err != nil {
		t.Fatalf("back-to-back slot should be allowed: %v", err)
	}
}

func TestService_Cancel(t *testing.T) {
	svc, _, notifier := newTestService()

	appt := mustCreate(t, svc, testBase.Add(8*time.Hour))
	got, err := svc.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelled || got.LateCancellation {
		t.Fatalf("expected plain cancellation, got %s late=%v", got.Status, got.LateCancellation)
	}

	// Una cita terminal no se cancela de nuevo.
	if _, err := svc.Cancel(context.Background(), appt.ID); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}

	if notifier.events[len(notifier.events)-1] != EventCancelled {
		t.Fatalf("expected cancelled event, got %v", notifier.events)
	}
}

func TestService_Cancel_Late(t *testing.T) {
	svc, _, _ := newTestService()

	appt := mustCreate(t, svc, testBase.Add(5*time.Hour))

	// Avanza el reloj: quedan menos de 4 horas para la cita.
	svc.now = func() time.Time { return testBase.Add(2 * time.Hour) }

	got, err := svc.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelledLate || !got.LateCancellation {
		t.Fatalf("expected late cancellation, got %s late=%v", got.Status, got.LateCancellation)
	}
}

func TestService_Reschedule(t *testing.T) {
	svc, _, notifier := newTestService()

	appt := mustCreate(t, svc, testBase.Add(5*time.Hour))
	got, err := svc.Reschedule(context.Background(), appt.ID, testBase.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !got.ScheduledAt.Equal(testBase.Add(6 * time.Hour)) {
		t.Fatalf("scheduled_at not updated: %v", got.ScheduledAt)
	}
	if notifier.events[len(notifier.events)-1] != EventRescheduled {
		t.Fatalf("expected rescheduled event, got %v", notifier.events)
	}

	// La nueva fecha también exige la anticipación mínima.
	if _, err := svc.Reschedule(context.Background(), appt.ID, testBase.Add(time.Hour)); !errors.Is(err, ErrTooSoon) {
		t.Fatalf("expected ErrTooSoon for new date, got %v", err)
	}
}

func TestService_Reschedule_WindowClosed(t *testing.T) {
	svc, _, _ := newTestService()

	appt := mustCreate(t, svc, testBase.Add(5*time.Hour))

	// Queda menos de 2 horas para la cita vigente.
	svc.now = func() time.Time { return testBase.Add(3*time.Hour + 30*time.Minute) }

	_, err := svc.Reschedule(context.Background(), appt.ID, testBase.Add(12*time.Hour))
	if !errors.Is(err, ErrRescheduleLate) {
		t.Fatalf("expected ErrRescheduleLate, got %v", err)
	}
}

func TestService_Lifecycle(t *testing.T) {
	svc, _, _ := newTestService()

	appt := mustCreate(t, svc, testBase.Add(5*time.Hour))

	if _, err := svc.Complete(context.Background(), appt.ID, ""); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("scheduled cannot complete, got %v", err)
	}

	if _, err := svc.Confirm(context.Background(), appt.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Start(context.Background(), appt.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	got, err := svc.Complete(context.Background(), appt.ID, "sin novedades")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != StatusCompleted || got.Notes != "sin novedades" {
		t.Fatalf("unexpected final state: %s notes=%q", got.Status, got.Notes)
	}

	// Una cita en curso o terminada ya no se reprograma.
	if _, err := svc.Reschedule(context.Background(), appt.ID, testBase.Add(10*time.Hour)); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
}
