package appointments

import "errors"

// ErrBadTransition indica una transición no permitida desde el estado actual.
var ErrBadTransition = errors.New("transition not allowed from current status")

// transitions enumera los estados destino válidos por estado origen.
// Completed, cancelled y cancelled_late son terminales.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusCancelledLate},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusCancelledLate},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reporta si from admite pasar a to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transition valida y aplica el cambio de estado sobre la cita.
func (a *Appointment) transition(to Status) error {
	if !CanTransition(a.Status, to) {
		return ErrBadTransition
	}
	a.Status = to
	return nil
}

// Cancellable reporta si la cita aún puede cancelarse o reprogramarse.
func (a Appointment) Cancellable() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}
