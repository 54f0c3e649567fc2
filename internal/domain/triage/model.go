package triage

import "time"

// GeneralState es el estado general observado al ingreso.
type GeneralState string

const (
	StateCritical GeneralState = "critical"
	StateWeak     GeneralState = "weak"
	StateAlert    GeneralState = "alert"
	StateStable   GeneralState = "stable"
)

func ValidState(s string) bool {
	switch GeneralState(s) {
	case StateCritical, StateWeak, StateAlert, StateStable:
		return true
	}
	return false
}

// PainLevel es el nivel de dolor observado.
type PainLevel string

const (
	PainNone     PainLevel = "none"
	PainMild     PainLevel = "mild"
	PainModerate PainLevel = "moderate"
	PainSevere   PainLevel = "severe"
)

func ValidPain(s string) bool {
	switch PainLevel(s) {
	case PainNone, PainMild, PainModerate, PainSevere:
		return true
	}
	return false
}

// Priority es la prioridad de atención asignada por el triaje.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank ordena prioridades: menor es más urgente.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Vitals son los signos registrados durante el triaje.
type Vitals struct {
	GeneralState GeneralState
	HeartRate    int // latidos por minuto
	RespRate     int // respiraciones por minuto
	TemperatureC float64
	Pain         PainLevel
	Bleeding     bool
	Shock        bool
}

// Triage es la evaluación de ingreso de una cita.
type Triage struct {
	ID            string
	AppointmentID string
	PetID         string

	Vitals       Vitals
	Priority     Priority
	Observations string

	Attended   bool
	AttendedAt *time.Time

	CreatedBy string
	CreatedAt time.Time
}
