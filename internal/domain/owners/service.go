package owners

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("owner not found")
	ErrEmailTaken    = errors.New("owner email already registered")
	ErrDocumentTaken = errors.New("owner document already registered")
	ErrInactive      = errors.New("owner is inactive")
)

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
	Name     string
	Email    string
	Document string
	Phone    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Owner, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	document := strings.TrimSpace(in.Document)

	if name == "" || email == "" || document == "" {
		return Owner{}, ErrInvalidInput
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Document:  document,
		Phone:     strings.TrimSpace(in.Phone),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail vincula usuarios con rol owner a su registro de propietario.
func (s *Service) GetByEmail(ctx context.Context, email string) (Owner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Owner{}, ErrNotFound
	}
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]Owner, error) {
	return s.repo.List(ctx, onlyActive)
}

// Search busca por nombre, correo o documento (subcadena, sin
// distinguir mayúsculas). Con término vacío devuelve el listado completo.
func (s *Service) Search(ctx context.Context, q string) ([]Owner, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.repo.List(ctx, false)
	}
	return s.repo.Search(ctx, q)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string
	Phone *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Owner{}, ErrInvalidInput
		}
		o.Name = name
	}
	if in.Phone != nil {
		o.Phone = strings.TrimSpace(*in.Phone)
	}

	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	// Idempotente
	if !o.Active {
		return o, nil
	}

	o.Active = false
	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}
