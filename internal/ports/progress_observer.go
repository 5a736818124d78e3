package ports

import "itinerary-service/internal/domain"

// Receives planning progress. Observers must not affect control flow.
type ProgressObserver interface {
	OnProgress(event domain.ProgressEvent)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(event domain.ProgressEvent)

func (f ProgressFunc) OnProgress(event domain.ProgressEvent) { f(event) }
