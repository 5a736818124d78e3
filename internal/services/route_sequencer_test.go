package services

import (
	"context"
	"itinerary-service/internal/adapters/traveltime"
	"itinerary-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSequenceRouteTimesStopsFromOrigin(t *testing.T) {
	date := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	places := placesAround(abuDhabi, 2)

	opts := DefaultGraphOptions()
	opts.CallInterval = 0
	g := BuildTravelGraph(context.Background(), traveltime.NewUniformMockProvider(20*60), zap.NewNop(), abuDhabi, places, opts)

	stops := SequenceRoute(g, OriginNodeID, places, clockAt(date, 9, 0))
	require.Len(t, stops, 2)

	assert.Equal(t, 1, stops[0].Order)
	assert.Equal(t, clockAt(date, 9, 20), stops[0].StartTime)
	assert.Equal(t, clockAt(date, 10, 20), stops[0].EndTime)
	require.NotNil(t, stops[0].TravelTimeFromPrevious)
	assert.Equal(t, 20*time.Minute, *stops[0].TravelTimeFromPrevious)

	assert.False(t, stops[1].StartTime.Before(clockAt(date, 10, 40)))
	assert.Equal(t, 2, stops[1].Order)
}

func TestSequenceRoutePicksNearestAndBreaksTiesByInputOrder(t *testing.T) {
	places := []domain.Place{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	g := NewTravelGraph(nil)
	set := func(from, to string, sec int) {
		g.SetEdge(domain.TravelEdge{From: from, To: to, DurationSeconds: sec})
	}
	set(OriginNodeID, "a", 600)
	set(OriginNodeID, "b", 300)
	set(OriginNodeID, "c", 300)
	set("b", "a", 200)
	set("b", "c", 200)
	set("a", "c", 100)
	set("c", "a", 100)

	depart := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		stops := SequenceRoute(g, OriginNodeID, places, depart)
		ids := make([]string, 0, len(stops))
		for _, s := range stops {
			ids = append(ids, s.PlaceID())
		}
		assert.Equal(t, []string{"b", "a", "c"}, ids)
	}
}

func TestSequenceRouteSkipsUnreachablePermanently(t *testing.T) {
	places := []domain.Place{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	g := NewTravelGraph(nil)
	g.SetEdge(domain.TravelEdge{From: OriginNodeID, To: "a", DurationSeconds: 60})
	g.SetEdge(domain.TravelEdge{From: OriginNodeID, To: "b", DurationSeconds: 120})
	// c is only reachable from a, but is dropped while standing at the origin.
	g.SetEdge(domain.TravelEdge{From: "a", To: "b", DurationSeconds: 60})
	g.SetEdge(domain.TravelEdge{From: "a", To: "c", DurationSeconds: 30})

	stops := SequenceRoute(g, OriginNodeID, places, time.Now())

	require.Len(t, stops, 2)
	assert.Equal(t, "a", stops[0].PlaceID())
	assert.Equal(t, "b", stops[1].PlaceID())
}

func TestSequenceRouteStopsWhenNothingReachable(t *testing.T) {
	g := NewTravelGraph(nil)
	stops := SequenceRoute(g, OriginNodeID, []domain.Place{{ID: "a"}}, time.Now())
	assert.Empty(t, stops)

	assert.Empty(t, SequenceRoute(g, OriginNodeID, nil, time.Now()))
}
