package domain

import "errors"

// Sentinel errors for conditions with no reasonable fallback.
var (
	ErrMissingTripDates   = errors.New("trip dates are missing or invalid")
	ErrMissingHome        = errors.New("home coordinates are missing")
	ErrTripTooLong        = errors.New("trip is longer than the planning limit")
	ErrEmptyPlacePool     = errors.New("place pool is empty")
	ErrMalformedItinerary = errors.New("no stop has usable coordinates")
	ErrNotFound           = errors.New("not found")
)

// IsFatalPlanning reports whether err aborts a planning run.
func IsFatalPlanning(err error) bool {
	return errors.Is(err, ErrMissingTripDates) ||
		errors.Is(err, ErrMissingHome) ||
		errors.Is(err, ErrTripTooLong) ||
		errors.Is(err, ErrEmptyPlacePool)
}
