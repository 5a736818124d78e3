package services

import (
	"context"
	"errors"
	"itinerary-service/internal/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type detailFunc func(ctx context.Context, p domain.Place) (domain.Place, error)

func (f detailFunc) PlaceDetails(ctx context.Context, p domain.Place) (domain.Place, error) {
	return f(ctx, p)
}

func TestEnrichPlacesKeepsOrderAndOriginalsOnFailure(t *testing.T) {
	var inFlight, peak atomic.Int32

	details := detailFunc(func(ctx context.Context, p domain.Place) (domain.Place, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		switch p.ID {
		case "p01":
			return domain.Place{}, errors.New("not indexed")
		case "p02":
			return domain.Place{ID: "someone-else"}, nil
		}
		p.OpeningHours = []domain.OpeningSpan{{Open: 9 * time.Hour, Close: 17 * time.Hour}}
		return p, nil
	})

	places := placesAround(abuDhabi, 7)
	got := EnrichPlaces(context.Background(), details, places, 3, zap.NewNop())

	assert.Len(t, got, 7)
	for i, p := range got {
		assert.Equal(t, places[i].ID, p.ID)
		switch p.ID {
		case "p01", "p02":
			assert.False(t, p.HasHours(), p.ID)
		default:
			assert.True(t, p.HasHours(), p.ID)
		}
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))

	// Input is left untouched.
	assert.False(t, places[0].HasHours())
}
