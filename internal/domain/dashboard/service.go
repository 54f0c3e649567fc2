package dashboard

import (
	"context"
	"time"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/inventory"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/triage"
)

// Summary es la foto operativa del día para el personal.
type Summary struct {
	Date string `json:"date"`

	AppointmentsToday map[appointments.Status]int `json:"appointments_today"`

	PendingTriage int `json:"pending_triage"`
	PendingUrgent int `json:"pending_urgent"`

	LowStockItems int `json:"low_stock_items"`

	ActivePets   int `json:"active_pets"`
	ActiveOwners int `json:"active_owners"`
}

// Service arma el resumen a partir de los demás módulos.
type Service struct {
	appts     *appointments.Service
	triageSvc *triage.Service
	inv       *inventory.Service
	petsSvc   *pets.Service
	ownersSvc *owners.Service
	now       func() time.Time
}

func NewService(appts *appointments.Service, triageSvc *triage.Service, inv *inventory.Service, petsSvc *pets.Service, ownersSvc *owners.Service) *Service {
	return &Service{
		appts:     appts,
		triageSvc: triageSvc,
		inv:       inv,
		petsSvc:   petsSvc,
		ownersSvc: ownersSvc,
		now:       time.Now,
	}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := Summary{
		Date:              dayStart.Format("2006-01-02"),
		AppointmentsToday: map[appointments.Status]int{},
	}

	todays, err := s.appts.List(ctx, appointments.ListFilter{From: dayStart, To: dayEnd})
	if err != nil {
		return Summary{}, err
	}
	for _, a := range todays {
		out.AppointmentsToday[a.Status]++
	}

	queue, err := s.triageSvc.Queue(ctx)
	if err != nil {
		return Summary{}, err
	}
	out.PendingTriage = len(queue)
	for _, t := range queue {
		if t.Priority == triage.PriorityUrgent {
			out.PendingUrgent++
		}
	}

	low, err := s.inv.LowStockReport(ctx)
	if err != nil {
		return Summary{}, err
	}
	out.LowStockItems = len(low)

	activePets, err := s.petsSvc.List(ctx, true)
	if err != nil {
		return Summary{}, err
	}
	out.ActivePets = len(activePets)

	activeOwners, err := s.ownersSvc.List(ctx, true)
	if err != nil {
		return Summary{}, err
	}
	out.ActiveOwners = len(activeOwners)

	return out, nil
}
