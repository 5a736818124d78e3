package domain

import "time"

// Persisted user preferences that shape scoring and durations.
type UserPreferences struct {
	CategoryWeights   map[Category]float64 `json:"category_weights,omitempty"`
	CategoryDurations map[Category]int     `json:"category_duration_minutes,omitempty"`
	MustSeeIDs        []string             `json:"must_see_ids,omitempty"`
	AvoidIDs          []string             `json:"avoid_ids,omitempty"`
}

// Apply returns a copy of p with the preference weight and duration overrides applied.
func (u UserPreferences) Apply(p Place) Place {
	if w, ok := u.CategoryWeights[p.Category]; ok && w > 0 {
		p.Score *= w
	}
	if m, ok := u.CategoryDurations[p.Category]; ok && m > 0 {
		p.PreferredDuration = time.Duration(m) * time.Minute
	}
	return p
}

// Persisted summary of the last planned trip for a user.
type TripContext struct {
	TripID     string      `json:"trip_id"`
	UserID     string      `json:"user_id"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Home       Coordinates `json:"home"`
	MustSeeIDs []string    `json:"must_see_ids,omitempty"`
	PlannedAt  time.Time   `json:"planned_at"`
}
