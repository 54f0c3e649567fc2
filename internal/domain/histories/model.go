package histories

import "time"

// MedicalHistory es la historia clínica única de una mascota.
// Se crea automáticamente al registrar la mascota y nunca se borra,
// solo se desactiva.
type MedicalHistory struct {
	ID     string
	PetID  string
	Number string // HC-AAAA-XXXX
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Consultation es una atención registrada en la historia. Los registros
// son inmutables una vez creados.
type Consultation struct {
	ID            string
	HistoryID     string
	AppointmentID string // opcional
	VetID         string

	Date      time.Time
	Reason    string
	Anamnesis string
	Diagnosis string
	Treatment string
	WeightKg  float64
	Notes     string

	CreatedAt time.Time
}
