package owners

import "time"

// Owner representa al propietario de una o más mascotas.
// No es necesariamente un usuario del sistema; si lo es, se vincula
// por correo.
type Owner struct {
	ID string

	Name     string
	Email    string
	Document string // documento de identidad, único
	Phone    string

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
