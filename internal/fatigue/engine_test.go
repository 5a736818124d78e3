package fatigue

import (
	"itinerary-service/internal/domain"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEstimateEnergyHeartRateBeatsMETFallback(t *testing.T) {
	e := New(DefaultConfig())
	profile := &domain.Profile{Sex: domain.SexMale, AgeYears: 40, WeightKg: 80}
	window := domain.SensorWindow{Window: 10 * time.Minute, HeartRateBPM: 140}
	ctx := domain.ContextWindow{Transit: domain.TransitWalking}

	hr := e.EstimateEnergy(profile, window, ctx)
	require.Equal(t, TierHeartRate, hr.Tier)

	window.HeartRateBPM = 0
	met := e.EstimateEnergy(profile, window, ctx)
	require.Equal(t, TierMET, met.Tier)

	assert.Greater(t, hr.Kcal, met.Kcal)
	assert.InDelta(t, 136.7, hr.Kcal, 0.5)
	assert.InDelta(t, 46.7, met.Kcal, 0.5)
}

func TestEstimateEnergyTiers(t *testing.T) {
	e := New(DefaultConfig())

	tests := []struct {
		name    string
		profile *domain.Profile
		sensors domain.SensorWindow
		want    Tier
	}{
		{
			name:    "heart rate without profile falls through to distance",
			sensors: domain.SensorWindow{Window: 10 * time.Minute, HeartRateBPM: 120, DistanceMeters: 800},
			want:    TierDistance,
		},
		{
			name:    "incomplete profile",
			profile: &domain.Profile{WeightKg: 60},
			sensors: domain.SensorWindow{Window: 10 * time.Minute, HeartRateBPM: 120},
			want:    TierMET,
		},
		{
			name:    "female regression",
			profile: &domain.Profile{Sex: domain.SexFemale, AgeYears: 30, WeightKg: 60},
			sensors: domain.SensorWindow{Window: 10 * time.Minute, HeartRateBPM: 120},
			want:    TierHeartRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.EstimateEnergy(tt.profile, tt.sensors, domain.ContextWindow{})
			assert.Equal(t, tt.want, got.Tier)
			assert.GreaterOrEqual(t, got.Kcal, 0.0)
		})
	}
}

func TestEstimateEnergyElevationSurcharge(t *testing.T) {
	e := New(DefaultConfig())
	profile := &domain.Profile{WeightKg: 80}

	flat := e.EstimateEnergy(profile, domain.SensorWindow{Window: 15 * time.Minute, DistanceMeters: 1000}, domain.ContextWindow{})
	hill := e.EstimateEnergy(profile, domain.SensorWindow{Window: 15 * time.Minute, DistanceMeters: 1000, ElevationGainMeters: 100}, domain.ContextWindow{})

	assert.InDelta(t, 80.0, flat.Kcal, 0.001)
	assert.InDelta(t, 80.0+75.0, hill.Kcal, 0.1)
}

func TestApplyModifiersClampsMultiplier(t *testing.T) {
	sensors := domain.SensorWindow{TemperatureC: ptr(41.0), Rain: domain.RainHeavy}
	ctx := domain.ContextWindow{MinutesBehind: 45, Transit: domain.TransitBus}

	// 0.35 + 0.15 + 0.15 - 0.15 = 0.50
	adj, m := ApplyModifiers(100, sensors, ctx)
	assert.InDelta(t, 1.5, m.Multiplier, 1e-9)
	assert.InDelta(t, 150, adj, 1e-9)

	ctx.Transit = domain.TransitWalking
	_, m = ApplyModifiers(100, sensors, ctx)
	assert.InDelta(t, 1.6, m.Multiplier, 1e-9)
}

func TestApplyModifiersBounds(t *testing.T) {
	temps := []*float64{nil, ptr(20.0), ptr(33.0), ptr(39.0)}
	rains := []domain.RainLevel{domain.RainNone, domain.RainLight, domain.RainModerate, domain.RainHeavy}
	transits := []domain.TransitMode{domain.TransitNone, domain.TransitBus, domain.TransitCar, domain.TransitWalking}

	for _, temp := range temps {
		for _, rain := range rains {
			for _, tr := range transits {
				for _, behind := range []int{0, 19, 20, 90} {
					_, m := ApplyModifiers(50,
						domain.SensorWindow{TemperatureC: temp, Rain: rain},
						domain.ContextWindow{Transit: tr, MinutesBehind: behind},
					)
					require.GreaterOrEqual(t, m.Multiplier, 0.6)
					require.LessOrEqual(t, m.Multiplier, 1.6)
				}
			}
		}
	}
}

func TestUpdateClampsScore(t *testing.T) {
	e := New(DefaultConfig())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, kcal := range []float64{-1e9, 0, 1e3, 1e9, math.MaxFloat64, math.NaN(), math.Inf(1), math.Inf(-1)} {
		prev := domain.FatigueState{Score: 99, KcalToday: 5e4, LastUpdate: at}
		got := e.Update(prev, nil, domain.SensorWindow{Window: 5 * time.Minute}, domain.ContextWindow{At: at.Add(5 * time.Minute)}, kcal, "test")
		assert.False(t, math.IsNaN(got.Score), "kcal=%v", kcal)
		assert.GreaterOrEqual(t, got.Score, 0.0, "kcal=%v", kcal)
		assert.LessOrEqual(t, got.Score, 100.0, "kcal=%v", kcal)
		assert.False(t, math.IsNaN(got.KcalToday) || math.IsInf(got.KcalToday, 0), "kcal=%v", kcal)
		assert.LessOrEqual(t, got.KcalToday, 5e4+maxSampleKcal)
	}

	nan := e.Update(domain.FatigueState{Score: 40, LastUpdate: at}, nil, domain.SensorWindow{Window: 5 * time.Minute},
		domain.ContextWindow{At: at.Add(5 * time.Minute)}, math.NaN(), "test")
	assert.InDelta(t, 40, nan.Score, 1e-9)
	assert.Equal(t, 0.0, nan.KcalToday)
}

func TestUpdateSmoothingAndTransitCredit(t *testing.T) {
	e := New(DefaultConfig())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := domain.FatigueState{Score: 50, KcalToday: 100, LastUpdate: at}

	got := e.Update(prev, nil, domain.SensorWindow{Window: 10 * time.Minute},
		domain.ContextWindow{At: at.Add(10 * time.Minute)}, 100, "watch")
	// raw = 100 * 0.06 = 6; pre = 56; ewma = 0.3*56 + 0.7*50 = 51.8
	assert.InDelta(t, 51.8, got.Score, 1e-9)
	assert.InDelta(t, 200, got.KcalToday, 1e-9)
	assert.Equal(t, "watch", got.Source)

	seated := e.Update(prev, nil, domain.SensorWindow{Window: 20 * time.Minute},
		domain.ContextWindow{At: at.Add(20 * time.Minute), Transit: domain.TransitCar}, 10, "phone")
	// raw = 0.6 - 10 = -9.4; pre = 40.6; ewma = 47.18
	assert.InDelta(t, 47.18, seated.Score, 1e-9)
}

func TestUpdateDailyRolloverAndTraceBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceLimit = 3
	e := New(cfg)

	at := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	state := domain.FatigueState{}
	for i := 0; i < 5; i++ {
		at = at.Add(30 * time.Minute)
		state = e.Update(state, nil, domain.SensorWindow{Window: 30 * time.Minute},
			domain.ContextWindow{At: at}, 10, "tick")
	}

	require.Len(t, state.Trace, 3)
	assert.Equal(t, at, state.Trace[0].At)
	assert.True(t, state.Trace[0].At.After(state.Trace[1].At))

	// 22:30, 23:00, 23:30 on day one; 00:00 and 00:30 on day two.
	assert.InDelta(t, 20, state.KcalToday, 1e-9)
}

func TestRestRecovery(t *testing.T) {
	score := 80.0

	short := RestRecovery(score, 15*time.Minute, domain.VenueCafe)
	half := RestRecovery(score, 30*time.Minute, domain.VenueCafe)
	hour := RestRecovery(score, 60*time.Minute, domain.VenueCafe)
	long := RestRecovery(score, 8*time.Hour, domain.VenueSpa)

	assert.InDelta(t, 80*(1-0.15), short, 1e-9)
	assert.InDelta(t, 80*(1-0.30), half, 1e-9)
	assert.InDelta(t, 80*(1-0.50), hour, 1e-9)
	assert.InDelta(t, 80*(1-0.60), long, 1e-9)

	// Steeper gain in the first half hour than in the second.
	assert.Greater(t, score-half, half-hour)

	spa := RestRecovery(score, 20*time.Minute, domain.VenueSpa)
	hotel := RestRecovery(score, 20*time.Minute, domain.VenueHotelRoom)
	cafe := RestRecovery(score, 20*time.Minute, domain.VenueCafe)
	park := RestRecovery(score, 20*time.Minute, domain.VenuePark)
	assert.Less(t, spa, hotel)
	assert.Less(t, hotel, cafe)
	assert.Less(t, cafe, park)

	assert.Equal(t, score, RestRecovery(score, 0, domain.VenueSpa))
}
