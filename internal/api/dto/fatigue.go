package dto

import "time"

type ProfileRequest struct {
	Sex      string  `json:"sex" validate:"omitempty,oneof=male female"`
	AgeYears int     `json:"age_years" validate:"gte=0,lte=120"`
	WeightKg float64 `json:"weight_kg" validate:"gte=0,lte=400"`
}

type FatigueSampleRequest struct {
	Profile             *ProfileRequest `json:"profile"`
	WindowSeconds       int             `json:"window_seconds" validate:"required,gt=0,lte=86400"`
	HeartRateBPM        float64         `json:"heart_rate_bpm" validate:"gte=0,lte=250"`
	DistanceMeters      float64         `json:"distance_meters" validate:"gte=0,lte=100000"`
	ElevationGainMeters float64         `json:"elevation_gain_meters" validate:"gte=0,lte=10000"`
	TemperatureC        *float64        `json:"temperature_c" validate:"omitempty,gte=-60,lte=60"`
	Rain                string          `json:"rain" validate:"omitempty,oneof=light moderate heavy"`
	Category            string          `json:"category"`
	Transit             string          `json:"transit" validate:"omitempty,oneof=walking cycling bus car train"`
	MinutesBehind       int             `json:"minutes_behind" validate:"gte=0"`
	At                  *time.Time      `json:"at"`
	Source              string          `json:"source" validate:"max=64"`
}

type RestRequest struct {
	Minutes int    `json:"minutes" validate:"required,gt=0,lte=1440"`
	Venue   string `json:"venue" validate:"required,oneof=spa hotel_room cafe park other"`
}

type TraceResponse struct {
	At       time.Time `json:"at"`
	Kcal     float64   `json:"kcal"`
	RawDelta float64   `json:"raw_delta"`
	Score    float64   `json:"score"`
	Source   string    `json:"source"`
}

type FatigueResponse struct {
	UserID     string          `json:"user_id"`
	Score      float64         `json:"score"`
	KcalToday  float64         `json:"kcal_today"`
	LastUpdate time.Time       `json:"last_update"`
	Source     string          `json:"source"`
	Tier       string          `json:"tier,omitempty"`
	Multiplier float64         `json:"multiplier,omitempty"`
	Trace      []TraceResponse `json:"trace"`
}
