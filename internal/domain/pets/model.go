package pets

import "time"

// Pet representa una mascota registrada en la clínica.
// Cada mascota pertenece a un propietario y tiene una historia clínica
// creada automáticamente al registrarla.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species string // perro, gato, etc.
	Breed   string // opcional

	BirthDate *time.Time
	Microchip string // opcional, único si está presente

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Age devuelve la edad en años cumplidos a la fecha dada, o -1 si no
// hay fecha de nacimiento registrada.
func (p Pet) Age(at time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	bd := *p.BirthDate
	years := at.Year() - bd.Year()
	if at.Month() < bd.Month() || (at.Month() == bd.Month() && at.Day() < bd.Day()) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
