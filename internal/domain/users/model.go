package users

import (
	"time"

	"vet-clinic-api/internal/ports/auth"
)

// User representa una cuenta del sistema (personal de la clínica o
// propietario con acceso al portal).
type User struct {
	ID    string
	Name  string
	Email string
	Phone string

	PasswordHash string
	Role         auth.Role

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}
