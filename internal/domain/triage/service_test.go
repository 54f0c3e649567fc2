package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type testRepo struct {
	items map[string]Triage
}

func newTestRepo() *testRepo {
	return &testRepo{items: map[string]Triage{}}
}

func (r *testRepo) Create(ctx context.Context, t Triage) error {
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) Update(ctx context.Context, t Triage) error {
	if _, ok := r.items[t.ID]; !ok {
		return errors.New("missing triage")
	}
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Triage, bool, error) {
	t, ok := r.items[id]
	return t, ok, nil
}

func (r *testRepo) GetByAppointment(ctx context.Context, appointmentID string) (Triage, bool, error) {
	for _, t := range r.items {
		if t.AppointmentID == appointmentID {
			return t, true, nil
		}
	}
	return Triage{}, false, nil
}

func (r *testRepo) ListPending(ctx context.Context) ([]Triage, error) {
	var out []Triage
	for _, t := range r.items {
		if !t.Attended {
			out = append(out, t)
		}
	}
	return out, nil
}

type testAgenda struct {
	appts map[string]appointments.Appointment
}

func (a testAgenda) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	appt, ok := a.appts[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return appt, nil
}

func newTestService() (*Service, *testRepo) {
	agenda := testAgenda{appts: map[string]appointments.Appointment{
		"appt-1": {ID: "appt-1", PetID: "pet-1", Status: appointments.StatusConfirmed},
		"appt-2": {ID: "appt-2", PetID: "pet-2", Status: appointments.StatusScheduled},
		"appt-3": {ID: "appt-3", PetID: "pet-3", Status: appointments.StatusInProgress},
		"appt-x": {ID: "appt-x", PetID: "pet-4", Status: appointments.StatusCancelled},
	}}
	repo := newTestRepo()
	svc := NewService(repo, agenda)
	base := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-1",
		Vitals:        stableVitals(),
	}, "asst-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Priority != PriorityLow || got.PetID != "pet-1" {
		t.Fatalf("unexpected triage: %+v", got)
	}

	// Una cita admite un solo triaje.
	if _, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-1",
		Vitals:        stableVitals(),
	}, "asst-1"); !errors.Is(err, ErrAlreadyTriaged) {
		t.Fatalf("expected ErrAlreadyTriaged, got %v", err)
	}
}

func TestService_Create_AppointmentChecks(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "missing",
		Vitals:        stableVitals(),
	}, "asst-1"); !errors.Is(err, ErrApptNotFound) {
		t.Fatalf("expected ErrApptNotFound, got %v", err)
	}

	// Cita cancelada: no hay nada que triar.
	if _, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-x",
		Vitals:        stableVitals(),
	}, "asst-1"); !errors.Is(err, ErrApptNotTriagable) {
		t.Fatalf("expected ErrApptNotTriagable, got %v", err)
	}
}

func TestService_Create_UrgentNeedsObservations(t *testing.T) {
	svc, _ := newTestService()

	v := stableVitals()
	v.Shock = true

	_, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-1",
		Vitals:        v,
		Observations:  "shock",
	}, "asst-1")
	if !errors.Is(err, ErrNeedsObservation) {
		t.Fatalf("expected ErrNeedsObservation, got %v", err)
	}

	got, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-1",
		Vitals:        v,
		Observations:  "shock con mucosas pálidas",
	}, "asst-1")
	if err != nil {
		t.Fatalf("create urgent: %v", err)
	}
	if got.Priority != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got.Priority)
	}
}

func TestService_Queue_Ordering(t *testing.T) {
	svc, _ := newTestService()

	low, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-1", Vitals: stableVitals(),
	}, "asst-1")
	if err != nil {
		t.Fatalf("create low: %v", err)
	}

	urgentVitals := stableVitals()
	urgentVitals.Bleeding = true
	urgent, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-2",
		Vitals:        urgentVitals,
		Observations:  "sangrado abundante en pata",
	}, "asst-1")
	if err != nil {
		t.Fatalf("create urgent: %v", err)
	}

	mediumVitals := stableVitals()
	mediumVitals.Pain = PainModerate
	medium, err := svc.Create(context.Background(), CreateInput{
		AppointmentID: "appt-3", Vitals: mediumVitals,
	}, "asst-1")
	if err != nil {
		t.Fatalf("create medium: %v", err)
	}

	queue, err := svc.Queue(context.Background())
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(queue))
	}
	if queue[0].ID != urgent.ID || queue[1].ID != medium.ID || queue[2].ID != low.ID {
		t.Fatalf("unexpected queue order: %s %s %s", queue[0].Priority, queue[1].Priority, queue[2].Priority)
	}

	// Atender saca el triaje de la cola.
	if _, err := svc.MarkAttended(context.Background(), urgent.ID); err != nil {
		t.Fatalf("attend: %v", err)
	}
	queue, _ = svc.Queue(context.Background())
	if len(queue) != 2 || queue[0].ID != medium.ID {
		t.Fatalf("expected medium first after attending urgent")
	}

	n, err := svc.PendingUrgent(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected no pending urgent, got %d (%v)", n, err)
	}
}
