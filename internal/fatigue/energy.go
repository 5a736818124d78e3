package fatigue

import (
	"itinerary-service/internal/domain"
)

// Tier records which data source produced an energy estimate.
type Tier string

const (
	TierHeartRate Tier = "heart_rate"
	TierDistance  Tier = "distance"
	TierMET       Tier = "met"
)

type Estimate struct {
	Kcal float64
	Tier Tier
}

// Walking costs roughly 1 kcal per kg per km on flat ground.
const kcalPerKgKm = 1.0

// Lifting body mass against gravity at ~25% muscular efficiency.
const climbEfficiency = 0.25

var transitMET = map[domain.TransitMode]float64{
	domain.TransitWalking: 3.5,
	domain.TransitCycling: 6.8,
	domain.TransitBus:     1.3,
	domain.TransitCar:     1.3,
	domain.TransitTrain:   1.5,
}

var categoryMET = map[domain.Category]float64{
	domain.CategoryMuseum:     2.3,
	domain.CategoryLandmark:   3.0,
	domain.CategoryPark:       3.5,
	domain.CategoryNature:     6.0,
	domain.CategoryBeach:      2.5,
	domain.CategoryShopping:   2.3,
	domain.CategoryRestaurant: 1.5,
	domain.CategoryCafe:       1.3,
	domain.CategoryNightlife:  3.0,
	domain.CategoryReligious:  1.8,
	domain.CategorySpa:        1.0,
	domain.CategoryUnknown:    2.5,
}

// MET returns the metabolic equivalent for a context; transit wins over category.
func MET(ctx domain.ContextWindow) float64 {
	if m, ok := transitMET[ctx.Transit]; ok {
		return m
	}
	if m, ok := categoryMET[ctx.Category]; ok {
		return m
	}
	return categoryMET[domain.CategoryUnknown]
}

// EstimateEnergy returns kcal spent over the sensor window using the best
// available data: heart rate with a complete profile, then distance, then the
// MET table.
func (e Engine) EstimateEnergy(
	profile *domain.Profile,
	sensors domain.SensorWindow,
	ctx domain.ContextWindow,
) Estimate {
	minutes := sensors.Minutes()
	if minutes <= 0 {
		return Estimate{Tier: TierMET}
	}

	if sensors.HeartRateBPM > 0 && profile.Complete() {
		return Estimate{
			Kcal: max(0, keytelKcalPerMinute(profile, sensors.HeartRateBPM)*minutes),
			Tier: TierHeartRate,
		}
	}

	weight := e.cfg.DefaultWeightKg
	if profile != nil && profile.WeightKg > 0 {
		weight = profile.WeightKg
	}

	if sensors.DistanceMeters > 0 {
		flat := weight * (sensors.DistanceMeters / 1000) * kcalPerKgKm
		climb := 0.0
		if sensors.ElevationGainMeters > 0 {
			joules := weight * 9.81 * sensors.ElevationGainMeters
			climb = joules / 4184 / climbEfficiency
		}
		return Estimate{Kcal: flat + climb, Tier: TierDistance}
	}

	return Estimate{
		Kcal: MET(ctx) * weight * minutes / 60,
		Tier: TierMET,
	}
}

// keytelKcalPerMinute is the Keytel et al. (2005) regression without VO2max.
func keytelKcalPerMinute(p *domain.Profile, bpm float64) float64 {
	age := float64(p.AgeYears)
	w := p.WeightKg

	var kj float64
	if p.Sex == domain.SexFemale {
		kj = -20.4022 + 0.4472*bpm - 0.1263*w + 0.074*age
	} else {
		kj = -55.0969 + 0.6309*bpm + 0.1988*w + 0.2017*age
	}
	return kj / 4.184
}
