package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_HashesPassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "Dra. Luisa",
		Email:    "Luisa@Clinic.Test",
		Password: "Secreta123",
		Role:     "vet",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if u.Email != "luisa@clinic.test" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "Secreta123" {
		t.Fatalf("expected bcrypt hash, got %q", u.PasswordHash)
	}
	if u.Role != auth.RoleVet || !u.Active {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.CreatedAt.Equal(now) || u.CreatedBy != "admin-1" {
		t.Fatalf("unexpected audit fields: %+v", u)
	}
}

func TestService_Create_PasswordPolicy(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "Ab1", ErrWeakPassword},
		{"no digit", "Abcdefgh", ErrWeakPassword},
		{"no uppercase", "abcdefg1", ErrWeakPassword},
		{"ok", "Abcdefg1", nil},
	}

	for _, tc := range cases {
		_, err := svc.Create(context.Background(), CreateInput{
			Name:     "X",
			Email:    tc.name + "@clinic.test",
			Password: tc.password,
			Role:     "assistant",
		}, "")
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestService_Create_RejectsUnknownRole(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "X",
		Email:    "x@clinic.test",
		Password: "Abcdefg1",
		Role:     "janitor",
	}, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_DuplicateEmail(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	in := CreateInput{Name: "X", Email: "dup@clinic.test", Password: "Abcdefg1", Role: "vet"}
	if _, err := svc.Create(context.Background(), in, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), in, ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "X",
		Email:    "login@clinic.test",
		Password: "Abcdefg1",
		Role:     "owner",
	}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), "LOGIN@clinic.test", "Abcdefg1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %s, got %s", u.ID, got.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "login@clinic.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@clinic.test", "Abcdefg1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestService_Authenticate_InactiveUser(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "X",
		Email:    "inactive@clinic.test",
		Password: "Abcdefg1",
		Role:     "vet",
	}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Deactivate(context.Background(), u.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), u.Email, "Abcdefg1"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestService_ChangePassword(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "X",
		Email:    "pw@clinic.test",
		Password: "Abcdefg1",
		Role:     "vet",
	}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "Nueva1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "Abcdefg1", "corta"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "Abcdefg1", "Nueva1234"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), u.Email, "Nueva1234"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}
