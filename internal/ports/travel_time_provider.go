package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

// Travel duration and human-readable directions between two points.
type TravelTimeResult struct {
	DurationSeconds int
	Instructions    string
}

// Contract for retrieving travel duration between two coordinates.
type TravelTimeProvider interface {
	// Return travel duration and directions from origin to destination.
	TravelTime(ctx context.Context, origin, destination domain.Coordinates, mode domain.TravelMode) (TravelTimeResult, error)
}
