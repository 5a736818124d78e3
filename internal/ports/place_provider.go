package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

// Port: a boundary for retrieving scored candidate places around an origin.
type PlaceProvider interface {
	ListPlaces(ctx context.Context, origin domain.Coordinates) ([]domain.Place, error)
}

// Optional lookup that fills in details (opening hours, durations) for a single place.
type PlaceDetailProvider interface {
	PlaceDetails(ctx context.Context, place domain.Place) (domain.Place, error)
}
