package fatigue

import (
	"itinerary-service/internal/domain"
	"math"
	"time"
)

const maxRecoveryFraction = 0.60

var venueMultiplier = map[domain.RestVenue]float64{
	domain.VenueSpa:       1.3,
	domain.VenueHotelRoom: 1.15,
	domain.VenueCafe:      1.0,
	domain.VenuePark:      0.9,
	domain.VenueOther:     0.8,
}

// recoveryFraction is the share of current fatigue removed by a rest of the
// given length at an average venue: 30% over the first 30 minutes, another 20%
// by one hour, then approaching 60%.
func recoveryFraction(rest time.Duration) float64 {
	m := rest.Minutes()
	switch {
	case m <= 0:
		return 0
	case m <= 30:
		return 0.30 * m / 30
	case m <= 60:
		return 0.30 + 0.20*(m-30)/30
	default:
		return 0.50 + 0.10*(1-math.Exp(-(m-60)/60))
	}
}

// RestRecovery returns the fatigue score after passive rest. It is separate
// from the sampled Update loop and models recovery between active ticks.
func RestRecovery(score float64, rest time.Duration, venue domain.RestVenue) float64 {
	mult, ok := venueMultiplier[venue]
	if !ok {
		mult = venueMultiplier[domain.VenueOther]
	}

	frac := math.Min(recoveryFraction(rest)*mult, maxRecoveryFraction)
	return clamp(score*(1-frac), 0, 100)
}
