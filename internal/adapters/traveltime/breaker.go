package traveltime

import (
	"context"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Trip after this many consecutive failures.
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "travel-time",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerProvider guards a TravelTimeProvider with a circuit breaker. While the
// breaker is open calls fail fast, and the graph builder substitutes its fixed
// estimate instead of waiting on a dead upstream.
type BreakerProvider struct {
	next ports.TravelTimeProvider
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerProvider(next ports.TravelTimeProvider, cfg BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A cancelled request says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

func (b *BreakerProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TravelMode,
) (ports.TravelTimeResult, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.TravelTime(ctx, origin, destination, mode)
	})
	if err != nil {
		return ports.TravelTimeResult{}, fmt.Errorf("travel time: %w", err)
	}

	return out.(ports.TravelTimeResult), nil
}

func (b *BreakerProvider) State() gobreaker.State { return b.cb.State() }
