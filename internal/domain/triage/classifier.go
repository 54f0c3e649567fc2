package triage

// Clasificación por reglas encadenadas: la primera regla que aplica
// decide la prioridad. Umbrales según protocolo clínico de la casa.

// Límites vitales incompatibles con espera.
const (
	urgentHeartRateLow  = 40
	urgentHeartRateHigh = 250
	urgentRespRateLow   = 8
	urgentRespRateHigh  = 60
	urgentTempLow       = 36.0
	urgentTempHigh      = 40.5
)

// Límites que cuentan como señal de alerta.
const (
	alertHeartRateLow  = 60
	alertHeartRateHigh = 180
	alertRespRateLow   = 12
	alertRespRateHigh  = 40
	alertTempLow       = 37.5
	alertTempHigh      = 39.5
)

type rule func(v Vitals) (Priority, bool)

var rules = []rule{
	criticalStateRule,
	vitalLimitsRule,
	severeSignsRule,
	alertCountRule,
}

// Classify asigna la prioridad de atención a partir de los signos.
func Classify(v Vitals) Priority {
	for _, r := range rules {
		if p, ok := r(v); ok {
			return p
		}
	}
	return PriorityLow
}

func criticalStateRule(v Vitals) (Priority, bool) {
	if v.GeneralState == StateCritical {
		return PriorityUrgent, true
	}
	return "", false
}

func vitalLimitsRule(v Vitals) (Priority, bool) {
	if v.HeartRate < urgentHeartRateLow || v.HeartRate > urgentHeartRateHigh {
		return PriorityUrgent, true
	}
	if v.RespRate < urgentRespRateLow || v.RespRate > urgentRespRateHigh {
		return PriorityUrgent, true
	}
	if v.TemperatureC < urgentTempLow || v.TemperatureC > urgentTempHigh {
		return PriorityUrgent, true
	}
	return "", false
}

func severeSignsRule(v Vitals) (Priority, bool) {
	if v.Pain == PainSevere || v.Bleeding || v.Shock {
		return PriorityUrgent, true
	}
	return "", false
}

// alertCountRule suma señales de alerta: tres o más elevan a high,
// al menos una deja medium.
func alertCountRule(v Vitals) (Priority, bool) {
	alerts := 0
	if v.HeartRate < alertHeartRateLow || v.HeartRate > alertHeartRateHigh {
		alerts++
	}
	if v.RespRate < alertRespRateLow || v.RespRate > alertRespRateHigh {
		alerts++
	}
	if v.TemperatureC < alertTempLow || v.TemperatureC > alertTempHigh {
		alerts++
	}
	if v.Pain == PainModerate {
		alerts++
	}
	if v.GeneralState == StateWeak {
		alerts++
	}

	switch {
	case alerts >= 3:
		return PriorityHigh, true
	case alerts >= 1:
		return PriorityMedium, true
	}
	return "", false
}
