// Package clinicservices gestiona el catálogo de servicios de la
// clínica (consultas, vacunación, cirugías, etc.).
package clinicservices

import "time"

type ClinicService struct {
	ID string

	Name        string // único
	Description string

	DurationMinutes int
	Cost            float64

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}
