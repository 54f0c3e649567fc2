package clinicservices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("service not found")
	ErrNameTaken    = errors.New("service name already exists")
)

const defaultDurationMinutes = 30

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name            string
	Description     string
	DurationMinutes int
	Cost            float64
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (ClinicService, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ClinicService{}, ErrInvalidInput
	}
	if in.Cost < 0 {
		return ClinicService{}, ErrInvalidInput
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if duration < 0 {
		return ClinicService{}, ErrInvalidInput
	}

	now := s.now()
	cs := ClinicService{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: duration,
		Cost:            in.Cost,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       createdBy,
	}

	if err := s.repo.Create(ctx, cs); err != nil {
		return ClinicService{}, err
	}
	return cs, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (ClinicService, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]ClinicService, error) {
	return s.repo.List(ctx, onlyActive)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Description     *string
	DurationMinutes *int
	Cost            *float64
	Active          *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (ClinicService, error) {
	cs, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ClinicService{}, err
	}

	if in.Description != nil {
		cs.Description = strings.TrimSpace(*in.Description)
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			return ClinicService{}, ErrInvalidInput
		}
		cs.DurationMinutes = *in.DurationMinutes
	}
	if in.Cost != nil {
		if *in.Cost < 0 {
			return ClinicService{}, ErrInvalidInput
		}
		cs.Cost = *in.Cost
	}
	if in.Active != nil {
		cs.Active = *in.Active
	}

	cs.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, cs); err != nil {
		return ClinicService{}, err
	}
	return cs, nil
}

// Deactivate retira el servicio del catálogo sin borrarlo: las citas
// existentes siguen apuntando a él. Idempotente.
func (s *Service) Deactivate(ctx context.Context, id string) (ClinicService, error) {
	cs, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ClinicService{}, err
	}
	if !cs.Active {
		return cs, nil
	}
	cs.Active = false
	cs.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, cs); err != nil {
		return ClinicService{}, err
	}
	return cs, nil
}
