package users

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vet-clinic-api/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must have at least 8 characters, one digit and one uppercase letter")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
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
	Phone    string
	Password string
	Role     string
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if name == "" || email == "" {
		return User{}, ErrInvalidInput
	}
	if !auth.ValidRole(in.Role) {
		return User{}, ErrInvalidInput
	}
	if err := validatePassword(in.Password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         auth.Role(in.Role),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    createdBy,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate valida credenciales y devuelve el usuario.
// Cualquier credencial incorrecta devuelve ErrInvalidCredentials, sin
// distinguir correo inexistente de contraseña incorrecta.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInactiveUser
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name  *string
	Phone *string
	Role  *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return User{}, ErrInvalidInput
		}
		u.Name = name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		if !auth.ValidRole(*in.Role) {
			return User{}, ErrInvalidInput
		}
		u.Role = auth.Role(*in.Role)
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	// Idempotente
	if !u.Active {
		return u, nil
	}

	u.Active = false
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// validatePassword: mínimo 8 caracteres, al menos un dígito y una mayúscula.
func validatePassword(p string) error {
	if len(p) < 8 {
		return ErrWeakPassword
	}
	var hasDigit, hasUpper bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	if !hasDigit || !hasUpper {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
