package generator

import (
	"context"
	"encoding/json"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPGeneratorGenerateDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/days", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var body dayPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-11-03", body.Date)
		assert.Equal(t, []string{"louvre"}, body.AnchorIDs)
		require.Len(t, body.Candidates, 1)
		assert.Equal(t, 120, body.Candidates[0].DurationMinutes)

		_, _ = w.Write([]byte(`{"items": [
			{"place_id": "louvre", "reason": "Start with the Mona Lisa.", "duration_minutes": 150, "travel_minutes": 12.4},
			{"place_id": "", "reason": "ignored"},
			{"is_meal": true, "reason": "Lunch in the Tuileries.", "duration_minutes": 60}
		]}`))
	}))
	defer srv.Close()

	g, err := NewHTTPGenerator(srv.URL+"/", "k", time.Second, zap.NewNop())
	require.NoError(t, err)

	items, err := g.GenerateDay(context.Background(), ports.DayRequest{
		Date:      time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Origin:    domain.Coordinates{Lon: 2.35, Lat: 48.85},
		Mode:      domain.TravelModeWalking,
		AnchorIDs: []string{"louvre"},
		Candidates: []domain.Place{
			{ID: "louvre", Category: domain.CategoryMuseum, Coordinates: domain.Coordinates{Lon: 2.3376, Lat: 48.8606}},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "louvre", items[0].PlaceID)
	assert.Equal(t, 150*time.Minute, items[0].Duration)
	require.NotNil(t, items[0].Travel)
	assert.Equal(t, 12*time.Minute, *items[0].Travel)

	assert.True(t, items[1].IsMeal)
	assert.Nil(t, items[1].Travel)
}

func TestHTTPGeneratorMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	g, err := NewHTTPGenerator(srv.URL, "", time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = g.GenerateDay(context.Background(), ports.DayRequest{Date: time.Now()})
	assert.Error(t, err)
}

func TestNewHTTPGeneratorRequiresURL(t *testing.T) {
	_, err := NewHTTPGenerator(" ", "k", 0, zap.NewNop())
	assert.Error(t, err)
}
