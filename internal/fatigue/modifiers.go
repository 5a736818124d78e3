package fatigue

import "itinerary-service/internal/domain"

const (
	minModifier = -0.40
	maxModifier = 0.60
)

var rainModifier = map[domain.RainLevel]float64{
	domain.RainLight:    0.05,
	domain.RainModerate: 0.10,
	domain.RainHeavy:    0.15,
}

// Modifiers is the breakdown of contextual adjustments applied to a sample.
type Modifiers struct {
	Heat         float64
	Rain         float64
	TimePressure float64
	Transit      float64
	Multiplier   float64
}

// ApplyModifiers sums heat, rain, schedule pressure and seated-transit
// adjustments, clamps the total to [-40%, +60%] and applies it to kcal.
func ApplyModifiers(kcal float64, sensors domain.SensorWindow, ctx domain.ContextWindow) (float64, Modifiers) {
	var m Modifiers

	if t := sensors.TemperatureC; t != nil {
		switch {
		case *t >= 38:
			m.Heat = 0.35
		case *t >= 32:
			m.Heat = 0.20
		}
	}

	m.Rain = rainModifier[sensors.Rain]

	if ctx.MinutesBehind >= 20 {
		m.TimePressure = 0.15
	}
	if ctx.Transit.Seated() {
		m.Transit = -0.15
	}

	total := clamp(m.Heat+m.Rain+m.TimePressure+m.Transit, minModifier, maxModifier)
	m.Multiplier = 1 + total

	return kcal * m.Multiplier, m
}
