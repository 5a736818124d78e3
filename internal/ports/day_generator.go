package ports

import (
	"context"
	"itinerary-service/internal/domain"
	"time"
)

// Input for generating the content of one trip day.
type DayRequest struct {
	Date       time.Time
	DayIndex   int
	Origin     domain.Coordinates
	Mode       domain.TravelMode
	Candidates []domain.Place
	AnchorIDs  []string
	UsedIDs    []string
	MinStops   int
}

// One ordered item of a generated day. Travel is nil when the generator did not estimate it.
type GeneratedItem struct {
	PlaceID            string
	Reason             string
	Duration           time.Duration
	Travel             *time.Duration
	TravelInstructions string
	IsMeal             bool
}

// Contract for the external day-content generator.
// Empty or malformed output is a recoverable failure for the caller.
type DayGenerator interface {
	GenerateDay(ctx context.Context, req DayRequest) ([]GeneratedItem, error)
}
