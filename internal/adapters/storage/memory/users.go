// Package memory implementa los repositorios en memoria. Se usa en
// desarrollo y en las pruebas de integración del router; el despliegue
// real va contra postgres.
package memory

import (
	"context"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/users"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]users.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: map[string]users.User{}}
}

func (r *UserRepository) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if strings.EqualFold(other.Email, u.Email) {
			return users.ErrEmailTaken
		}
	}
	r.items[u.ID] = u
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return users.ErrNotFound
	}
	r.items[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]users.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	return out, nil
}
