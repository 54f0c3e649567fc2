package appointments

import "time"

// Políticas de anticipación sobre la agenda.
const (
	// Una cita nueva debe agendarse con al menos 4 horas de anticipación.
	minScheduleLead = 4 * time.Hour

	// Cancelar con menos de 4 horas marca la cita como cancelación tardía.
	lateCancelWindow = 4 * time.Hour

	// Reprogramar exige al menos 2 horas antes de la cita vigente,
	// y la nueva fecha debe cumplir la misma anticipación mínima.
	minRescheduleLead = 2 * time.Hour
)

func meetsScheduleLead(now, scheduledAt time.Time) bool {
	return !scheduledAt.Before(now.Add(minScheduleLead))
}

func isLateCancel(now, scheduledAt time.Time) bool {
	return scheduledAt.Before(now.Add(lateCancelWindow))
}

func meetsRescheduleLead(now, scheduledAt time.Time) bool {
	return !scheduledAt.Before(now.Add(minRescheduleLead))
}

// overlaps reporta si dos intervalos [aStart, aEnd) y [bStart, bEnd) se cruzan.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
