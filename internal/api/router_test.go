package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/adapters/store"
	"itinerary-service/internal/adapters/traveltime"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/fatigue"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var home = domain.Coordinates{Lat: 24.45, Lon: 54.38}

type stubPlaces []domain.Place

func (s stubPlaces) ListPlaces(ctx context.Context, origin domain.Coordinates) ([]domain.Place, error) {
	return s, nil
}

type geocoderFunc func(ctx context.Context, address string) (domain.Coordinates, error)

func (f geocoderFunc) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return f(ctx, address)
}

func catalogue(n int) stubPlaces {
	out := make(stubPlaces, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Place{
			ID:                fmt.Sprintf("p%02d", i),
			Name:              fmt.Sprintf("Place %d", i),
			Coordinates:       domain.Coordinates{Lat: home.Lat + 0.001*float64(i%4), Lon: home.Lon + 0.002*float64(i/4+1)},
			Category:          domain.CategoryLandmark,
			Score:             float64(100 - i),
			PreferredDuration: time.Hour,
		})
	}
	return out
}

type testServer struct {
	handler http.Handler
	metrics *obs.Metrics
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	logger := zap.NewNop()
	places := catalogue(16)
	kv := store.NewMemoryStore()

	graph := services.DefaultGraphOptions()
	graph.CallInterval = 0
	gen := services.NewSequencingGenerator(traveltime.NewUniformMockProvider(10*60), logger, graph)
	planner := services.NewTripPlanner(places, gen, logger, services.DefaultPlannerOptions())

	geocoder := geocoderFunc(func(ctx context.Context, address string) (domain.Coordinates, error) {
		if address == "Corniche, Abu Dhabi" {
			return home, nil
		}
		return domain.Coordinates{}, errors.New("no match")
	})

	ready := map[string]func(context.Context) error{
		"database": func(context.Context) error { return nil },
	}

	metrics := obs.NewMetrics("test")
	h := NewRouter(Deps{
		Places:      places,
		Planner:     planner,
		Fatigue:     services.NewFatigueTracker(kv, fatigue.New(fatigue.DefaultConfig()), logger),
		Prefs:       services.NewPreferenceService(kv),
		Geocoder:    geocoder,
		Metrics:     metrics,
		Logger:      logger,
		ReadyChecks: ready,
	})
	return testServer{handler: h, metrics: metrics}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestReady(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	down := NewRouter(Deps{ReadyChecks: map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","redis":"unavailable"}`, rec.Body.String())
}

func TestListPlaces(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/places?lat=24.45&lon=54.38&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.ListPlacesResponse](t, rec)
	require.Len(t, res.Places, 3)
	assert.Equal(t, "p00", res.Places[0].ID)
	assert.Equal(t, 60, res.Places[0].DurationMinutes)

	for _, path := range []string{"/places", "/places?lat=abc&lon=1", "/places?lat=24.45&lon=54.38&limit=0"} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path, "").Code, path)
	}
}

func TestPlanTrip(t *testing.T) {
	s := newTestServer(t)

	body := `{
		"user_id": "u1",
		"start_date": "2026-03-10",
		"end_date": "2026-03-11",
		"home": {"lat": 24.45, "lon": 54.38},
		"must_see_ids": ["p03"]
	}`
	rec := s.do(t, http.MethodPost, "/trips/plan", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.TripResponse](t, rec)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "2026-03-10", res.StartDate)
	require.Len(t, res.Days, 2)
	assert.Equal(t, []string{"p03"}, res.Days[0].AnchorIDs)

	seen := map[string]bool{}
	for _, d := range res.Days {
		require.NotEmpty(t, d.Stops)
		for _, st := range d.Stops {
			require.NotNil(t, st.Place)
			assert.False(t, seen[st.Place.ID], "place %s repeated", st.Place.ID)
			seen[st.Place.ID] = true
		}
	}

	last := s.do(t, http.MethodGet, "/trips/last/u1", "")
	require.Equal(t, http.StatusOK, last.Code)
	tc := decode[domain.TripContext](t, last)
	assert.Equal(t, res.ID, tc.TripID)
	assert.Equal(t, []string{"p03"}, tc.MustSeeIDs)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/trips/last/nobody", "").Code)
}

func TestPlanTripGeocodesHomeAddress(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/trips/plan",
		`{"start_date":"2026-03-10","end_date":"2026-03-10","home_address":"Corniche, Abu Dhabi"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.TripResponse](t, rec)
	assert.Equal(t, home.Lat, res.Home.Lat)
	assert.Len(t, res.Days, 1)

	rec = s.do(t, http.MethodPost, "/trips/plan",
		`{"start_date":"2026-03-10","end_date":"2026-03-10","home_address":"Atlantis"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanTripReadsDatesInTimeZone(t *testing.T) {
	s := newTestServer(t)

	offsetOf := func(body string) int {
		rec := s.do(t, http.MethodPost, "/trips/plan", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[dto.TripResponse](t, rec)
		require.Len(t, res.Days, 1)
		require.NotEmpty(t, res.Days[0].Stops)
		assert.Equal(t, "2026-03-10", res.Days[0].Date)
		_, off := res.Days[0].Stops[0].StartTime.Zone()
		return off
	}

	assert.Equal(t, 4*3600, offsetOf(`{"start_date":"2026-03-10","end_date":"2026-03-10","home":{"lat":24.45,"lon":54.38},"time_zone":"Asia/Dubai"}`))
	assert.Equal(t, 0, offsetOf(`{"start_date":"2026-03-10","end_date":"2026-03-10","home":{"lat":24.45,"lon":54.38}}`))
}

func TestPlanTripRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"start_date":`},
		{"unknown field", `{"start_date":"2026-03-10","end_date":"2026-03-11","home":{"lat":1,"lon":1},"trucks":3}`},
		{"two objects", `{"start_date":"2026-03-10","end_date":"2026-03-11","home":{"lat":1,"lon":1}}{}`},
		{"no home", `{"start_date":"2026-03-10","end_date":"2026-03-11"}`},
		{"bad date", `{"start_date":"10/03/2026","end_date":"2026-03-11","home":{"lat":1,"lon":1}}`},
		{"bad mode", `{"start_date":"2026-03-10","end_date":"2026-03-11","home":{"lat":1,"lon":1},"mode":"teleport"}`},
		{"end before start", `{"start_date":"2026-03-12","end_date":"2026-03-11","home":{"lat":24.45,"lon":54.38}}`},
		{"null island home", `{"start_date":"2026-03-10","end_date":"2026-03-11","home":{"lat":0,"lon":0}}`},
		{"trip too long", `{"start_date":"2026-01-01","end_date":"2030-12-31","home":{"lat":24.45,"lon":54.38}}`},
		{"unknown time zone", `{"start_date":"2026-03-10","end_date":"2026-03-11","home":{"lat":24.45,"lon":54.38},"time_zone":"Mars/Olympus"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/trips/plan", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestFatigueLifecycle(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/fatigue/u1", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/fatigue/u1/rest", `{"minutes":30,"venue":"spa"}`).Code)

	rec := s.do(t, http.MethodPost, "/fatigue/u1/samples",
		`{"window_seconds":1800,"distance_meters":3000,"profile":{"sex":"female","age_years":30,"weight_kg":60}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sample := decode[dto.FatigueResponse](t, rec)
	assert.Equal(t, "distance", sample.Tier)
	assert.Equal(t, 1.0, sample.Multiplier)
	assert.Greater(t, sample.Score, 0.0)
	assert.InDelta(t, 180.0, sample.KcalToday, 1e-9)
	require.Len(t, sample.Trace, 1)
	assert.Equal(t, "sensor", sample.Trace[0].Source)

	rec = s.do(t, http.MethodPost, "/fatigue/u1/rest", `{"minutes":30,"venue":"spa"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rested := decode[dto.FatigueResponse](t, rec)
	assert.Less(t, rested.Score, sample.Score)
	assert.Equal(t, "rest:spa", rested.Source)
	assert.Equal(t, "rest:spa", rested.Trace[0].Source)

	got := decode[dto.FatigueResponse](t, s.do(t, http.MethodGet, "/fatigue/u1", ""))
	assert.Equal(t, rested.Score, got.Score)
	assert.Len(t, got.Trace, 2)
	assert.Equal(t, "rest:spa", got.Source)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/fatigue/u1", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/fatigue/u1", "").Code)
}

func TestFatigueSampleValidation(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{}`,
		`{"window_seconds":-5}`,
		`{"window_seconds":60,"rain":"biblical"}`,
		`{"window_seconds":60,"transit":"rocket"}`,
		`{"window_seconds":600,"distance_meters":1e308,"profile":{"weight_kg":80}}`,
		`{"window_seconds":600,"elevation_gain_meters":1e12}`,
	} {
		rec := s.do(t, http.MethodPost, "/fatigue/u1/samples", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := s.do(t, http.MethodPost, "/fatigue/u1/rest", `{"minutes":30,"venue":"sauna"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/fatigue/u1/samples",
		`{"window_seconds":600,"distance_meters":100000,"elevation_gain_meters":10000,"profile":{"weight_kg":80}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/fatigue/u1", "").Code)
}

func TestPreferencesRoundTripAndMergeIntoPlan(t *testing.T) {
	s := newTestServer(t)

	empty := decode[dto.PreferencesResponse](t, s.do(t, http.MethodGet, "/preferences/u2", ""))
	assert.Empty(t, empty.MustSeeIDs)
	assert.NotNil(t, empty.MustSeeIDs)

	rec := s.do(t, http.MethodPut, "/preferences/u2",
		`{"must_see_ids":["p09"],"avoid_ids":["p00"],"category_weights":{"monument":2}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[dto.PreferencesResponse](t, s.do(t, http.MethodGet, "/preferences/u2", ""))
	assert.Equal(t, []string{"p09"}, got.MustSeeIDs)
	assert.Equal(t, []string{"p00"}, got.AvoidIDs)
	assert.Equal(t, map[string]float64{"landmark": 2}, got.CategoryWeights)

	plan := s.do(t, http.MethodPost, "/trips/plan",
		`{"user_id":"u2","start_date":"2026-03-10","end_date":"2026-03-10","home":{"lat":24.45,"lon":54.38}}`)
	require.Equal(t, http.StatusOK, plan.Code, plan.Body.String())

	trip := decode[dto.TripResponse](t, plan)
	require.Len(t, trip.Days, 1)
	assert.Equal(t, []string{"p09"}, trip.Days[0].AnchorIDs)
	for _, st := range trip.Days[0].Stops {
		assert.NotEqual(t, "p00", st.Place.ID)
	}

	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodPut, "/preferences/u2", `{"category_weights":{"museum":-1}}`).Code)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/health", "")
	s.do(t, http.MethodGet, "/fatigue/u9", "")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `route="/fatigue/{userID}`)
}
