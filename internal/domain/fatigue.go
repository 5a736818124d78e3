package domain

import "time"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Traveler physiology used by the energy estimator.
type Profile struct {
	Sex      Sex     `json:"sex"`
	AgeYears int     `json:"age_years"`
	WeightKg float64 `json:"weight_kg"`
}

// Complete reports whether the profile carries enough data for heart-rate regression.
func (p *Profile) Complete() bool {
	return p != nil && p.AgeYears > 0 && p.WeightKg > 0 && (p.Sex == SexMale || p.Sex == SexFemale)
}

type RainLevel string

const (
	RainNone     RainLevel = ""
	RainLight    RainLevel = "light"
	RainModerate RainLevel = "moderate"
	RainHeavy    RainLevel = "heavy"
)

// Sensor readings aggregated over one sample window. Zero values mean "not measured".
type SensorWindow struct {
	Window              time.Duration `json:"window"`
	HeartRateBPM        float64       `json:"heart_rate_bpm,omitempty"`
	DistanceMeters      float64       `json:"distance_meters,omitempty"`
	ElevationGainMeters float64       `json:"elevation_gain_meters,omitempty"`
	TemperatureC        *float64      `json:"temperature_c,omitempty"`
	Rain                RainLevel     `json:"rain,omitempty"`
}

// Minutes returns the window length in minutes.
func (s SensorWindow) Minutes() float64 { return s.Window.Minutes() }

type TransitMode string

const (
	TransitNone    TransitMode = ""
	TransitWalking TransitMode = "walking"
	TransitCycling TransitMode = "cycling"
	TransitBus     TransitMode = "bus"
	TransitCar     TransitMode = "car"
	TransitTrain   TransitMode = "train"
)

// Seated reports whether the traveler is sitting during this transit mode.
func (t TransitMode) Seated() bool { return t == TransitBus || t == TransitCar }

// What the traveler is doing during a sample window.
type ContextWindow struct {
	Category      Category    `json:"category,omitempty"`
	Transit       TransitMode `json:"transit,omitempty"`
	MinutesBehind int         `json:"minutes_behind,omitempty"`
	At            time.Time   `json:"at"`
}

// One entry in the fatigue trace buffer.
type TraceRecord struct {
	At       time.Time `json:"at"`
	Kcal     float64   `json:"kcal"`
	RawDelta float64   `json:"raw_delta"`
	Score    float64   `json:"score"`
	Source   string    `json:"source"`
}

// Persisted fatigue estimate for a traveler.
// Trace is ordered most recent first and bounded by the engine.
type FatigueState struct {
	Score      float64       `json:"score"`
	KcalToday  float64       `json:"kcal_today"`
	LastUpdate time.Time     `json:"last_update"`
	Source     string        `json:"source"`
	Trace      []TraceRecord `json:"trace,omitempty"`
}

// RestVenue classifies where passive rest happens.
type RestVenue string

const (
	VenueSpa       RestVenue = "spa"
	VenueHotelRoom RestVenue = "hotel_room"
	VenueCafe      RestVenue = "cafe"
	VenuePark      RestVenue = "park"
	VenueOther     RestVenue = "other"
)
