package domain

import "time"

// TravelMode selects the routing profile used for travel-time lookups.
type TravelMode string

const (
	TravelModeWalking TravelMode = "walking"
	TravelModeDriving TravelMode = "driving"
	TravelModeTransit TravelMode = "transit"
)

// Directed travel estimate between two graph nodes.
// Estimated is set when the provider failed and a fallback was substituted.
type TravelEdge struct {
	From            string
	To              string
	DurationSeconds int
	Instructions    string
	Estimated       bool
}

// Duration returns the edge duration as a time.Duration.
func (e TravelEdge) Duration() time.Duration {
	return time.Duration(e.DurationSeconds) * time.Second
}

// Represents a single stop in a day itinerary.
// Place is nil for meal annotations. TravelTimeFromPrevious is nil when unknown.
type ItineraryStop struct {
	Order                  int
	Place                  *Place
	StartTime              time.Time
	EndTime                time.Time
	EstimatedDuration      time.Duration
	TravelTimeFromPrevious *time.Duration
	TravelInstructions     string
	Reason                 string
	IsMeal                 bool
}

// PlaceID returns the stop's place id, or "" for meal stops.
func (s ItineraryStop) PlaceID() string {
	if s.Place == nil {
		return ""
	}
	return s.Place.ID
}

// DayStage tracks a day's progress through the planning state machine.
type DayStage string

const (
	DayStageIdle                  DayStage = "idle"
	DayStageAnchorsAssigned       DayStage = "anchors_assigned"
	DayStageCandidatesShortlisted DayStage = "candidates_shortlisted"
	DayStageDayGenerated          DayStage = "day_generated"
	DayStageOptimized             DayStage = "optimized"
	DayStageFinalized             DayStage = "finalized"
)

// Planned itinerary for a single trip day.
type DayPlan struct {
	Date           time.Time
	AnchorIDs      []string
	Stops          []ItineraryStop
	Leftovers      []Place
	Stage          DayStage
	Degraded       bool
	DegradedReason string
}

// PlaceIDs returns the ids of every non-meal stop in order.
func (d DayPlan) PlaceIDs() []string {
	ids := make([]string, 0, len(d.Stops))
	for _, s := range d.Stops {
		if id := s.PlaceID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Represents a full multi-day plan.
// A place id appears in at most one day's stops across the whole trip.
type TripPlan struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Home      Coordinates
	Days      []DayPlan
}

// Collisions returns place ids that appear in more than one day, mapped to the
// day indexes they were found in.
func (t TripPlan) Collisions() map[string][]int {
	seen := make(map[string][]int)
	for i, d := range t.Days {
		for _, id := range d.PlaceIDs() {
			seen[id] = append(seen[id], i)
		}
	}

	out := make(map[string][]int)
	for id, days := range seen {
		if len(days) > 1 {
			out[id] = days
		}
	}
	return out
}

// DateKey formats a calendar date as used in anchor maps.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// TripDays returns one midnight per calendar day between start and end inclusive.
func TripDays(start, end time.Time) []time.Time {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, start.Location())

	var days []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
