package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("pet not found")
	ErrDuplicatePet   = errors.New("owner already has a pet with that name and species")
	ErrMicrochipTaken = errors.New("microchip already registered")
)

// HistoryCreator crea la historia clínica de una mascota recién
// registrada. Lo implementa histories.Service; la interfaz vive aquí
// para evitar ciclos de imports.
type HistoryCreator interface {
	CreateForPet(ctx context.Context, petID string) error
}

type Service struct {
	repo      Repository
	histories HistoryCreator // puede ser nil en tests
	now       func() time.Time
}

func NewService(repo Repository, histories HistoryCreator) *Service {
	return &Service{
		repo:      repo,
		histories: histories,
		now:       time.Now,
	}
}

type CreateInput struct {
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	Microchip string
}

// Create registra la mascota y crea su historia clínica.
func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	name := strings.TrimSpace(in.Name)
	species := strings.ToLower(strings.TrimSpace(in.Species))

	if ownerID == "" || name == "" || species == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.BirthDate != nil && in.BirthDate.After(s.now()) {
		return Pet{}, ErrInvalidInput
	}

	// No duplicar nombre+especie por propietario.
	dup, err := s.repo.ExistsDuplicate(ctx, ownerID, name, species)
	if err != nil {
		return Pet{}, err
	}
	if dup {
		return Pet{}, ErrDuplicatePet
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Species:   species,
		Breed:     strings.TrimSpace(in.Breed),
		BirthDate: in.BirthDate,
		Microchip: strings.TrimSpace(in.Microchip),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}

	// Historia clínica automática al registrar. Si no se pudo abrir,
	// se deshace el alta para no dejar una mascota sin historia.
	if s.histories != nil {
		if err := s.histories.CreateForPet(ctx, p.ID); err != nil {
			_ = s.repo.Delete(ctx, p.ID)
			return Pet{}, err
		}
	}

	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]Pet, error) {
	return s.repo.List(ctx, onlyActive)
}

// OwnerOf expone el propietario de una mascota. Se usa desde otros
// módulos para autorización sin acoplar sus servicios al repo de pets.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string
	Breed     *string
	Microchip *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		if name != p.Name {
			dup, err := s.repo.ExistsDuplicate(ctx, p.OwnerID, name, p.Species)
			if err != nil {
				return Pet{}, err
			}
			if dup {
				return Pet{}, ErrDuplicatePet
			}
			p.Name = name
		}
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Microchip != nil {
		p.Microchip = strings.TrimSpace(*in.Microchip)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Deactivate marca la mascota como inactiva. Nunca se elimina: su
// historia clínica debe conservarse.
func (s *Service) Deactivate(ctx context.Context, id string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	// Idempotente
	if !p.Active {
		return p, nil
	}

	p.Active = false
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}
