// Package fatigue estimates traveler energy expenditure and maintains a
// smoothed fatigue score. Every function is pure: state goes in, new state
// comes out.
package fatigue

import (
	"itinerary-service/internal/domain"
	"math"
	"time"
)

type Config struct {
	// RateConstant converts adjusted kcal into fatigue points.
	RateConstant float64
	// TransitRecoveryPerMinute is credited while seated in transit.
	TransitRecoveryPerMinute float64
	// SmoothingAlpha weights the new reading in the EWMA.
	SmoothingAlpha float64
	TraceLimit     int
	// ReferenceWeightKg normalizes kcal so heavier travelers are not penalized
	// for their higher absolute expenditure.
	ReferenceWeightKg float64
	// DefaultWeightKg is used by the distance and MET tiers without a profile.
	DefaultWeightKg float64
}

func DefaultConfig() Config {
	return Config{
		RateConstant:             0.06,
		TransitRecoveryPerMinute: 0.5,
		SmoothingAlpha:           0.3,
		TraceLimit:               20,
		ReferenceWeightKg:        70,
		DefaultWeightKg:          70,
	}
}

type Engine struct {
	cfg Config
}

func New(cfg Config) Engine {
	d := DefaultConfig()
	if cfg.RateConstant <= 0 {
		cfg.RateConstant = d.RateConstant
	}
	if cfg.TransitRecoveryPerMinute < 0 {
		cfg.TransitRecoveryPerMinute = 0
	}
	if cfg.SmoothingAlpha <= 0 || cfg.SmoothingAlpha > 1 {
		cfg.SmoothingAlpha = d.SmoothingAlpha
	}
	if cfg.TraceLimit <= 0 {
		cfg.TraceLimit = d.TraceLimit
	}
	if cfg.ReferenceWeightKg <= 0 {
		cfg.ReferenceWeightKg = d.ReferenceWeightKg
	}
	if cfg.DefaultWeightKg <= 0 {
		cfg.DefaultWeightKg = d.DefaultWeightKg
	}
	return Engine{cfg: cfg}
}

func (e Engine) Config() Config { return e.cfg }

// maxSampleKcal bounds a single sample so state stays finite and encodable.
const maxSampleKcal = 100000.0

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Update folds one sample into prev and returns the new state.
//
// The raw delta is adjustedKcal (weight-normalized) times the rate constant,
// less a per-minute credit while seated in transit. The pre-smoothed score is
// clamped to [0,100] and blended with the previous score by EWMA. Daily kcal
// rolls over when the sample falls on a new calendar day.
func (e Engine) Update(
	prev domain.FatigueState,
	profile *domain.Profile,
	sensors domain.SensorWindow,
	ctx domain.ContextWindow,
	adjustedKcal float64,
	source string,
) domain.FatigueState {
	at := ctx.At
	if at.IsZero() {
		at = prev.LastUpdate.Add(sensors.Window)
	}

	kcal := adjustedKcal
	if math.IsNaN(kcal) || kcal < 0 {
		kcal = 0
	}
	kcal = min(kcal, maxSampleKcal)

	normalized := kcal
	if profile != nil && profile.WeightKg > 0 {
		normalized = kcal * e.cfg.ReferenceWeightKg / profile.WeightKg
	}

	raw := normalized * e.cfg.RateConstant
	if ctx.Transit.Seated() {
		raw -= e.cfg.TransitRecoveryPerMinute * sensors.Minutes()
	}

	pre := clamp(prev.Score+raw, 0, 100)
	alpha := e.cfg.SmoothingAlpha
	score := clamp(alpha*pre+(1-alpha)*prev.Score, 0, 100)

	kcalToday := prev.KcalToday
	if !prev.LastUpdate.IsZero() && !sameDay(prev.LastUpdate, at) {
		kcalToday = 0
	}
	kcalToday += kcal

	rec := domain.TraceRecord{
		At:       at,
		Kcal:     kcal,
		RawDelta: raw,
		Score:    score,
		Source:   source,
	}

	n := min(len(prev.Trace)+1, e.cfg.TraceLimit)
	trace := make([]domain.TraceRecord, 0, n)
	trace = append(trace, rec)
	for _, r := range prev.Trace {
		if len(trace) >= e.cfg.TraceLimit {
			break
		}
		trace = append(trace, r)
	}

	return domain.FatigueState{
		Score:      score,
		KcalToday:  kcalToday,
		LastUpdate: at,
		Source:     source,
		Trace:      trace,
	}
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
