package api

import (
	"context"
	"itinerary-service/internal/api/handlers"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is wired to. Geocoder, Metrics and
// ReadyChecks are optional.
type Deps struct {
	Places      ports.PlaceProvider
	Planner     *services.TripPlanner
	Fatigue     *services.FatigueTracker
	Prefs       *services.PreferenceService
	Geocoder    ports.Geocoder
	Location    *time.Location
	Metrics     *obs.Metrics
	Logger      *zap.Logger
	ReadyChecks map[string]func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	placeHandler := &handlers.PlaceHandler{Places: d.Places, Logger: logger}
	tripHandler := &handlers.TripHandler{
		Planner:  d.Planner,
		Prefs:    d.Prefs,
		Geocoder: d.Geocoder,
		Location: d.Location,
		Logger:   logger,
	}
	fatigueHandler := &handlers.FatigueHandler{Tracker: d.Fatigue, Logger: logger}
	prefsHandler := &handlers.PreferencesHandler{Prefs: d.Prefs, Logger: logger}
	readyHandler := &handlers.ReadyHandler{Checks: d.ReadyChecks, Logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger, d.Metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Get("/ready", readyHandler.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/places", placeHandler.List)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/plan", tripHandler.Plan)
		r.Get("/last/{userID}", tripHandler.Last)
	})

	r.Route("/fatigue/{userID}", func(r chi.Router) {
		r.Get("/", fatigueHandler.Get)
		r.Delete("/", fatigueHandler.Reset)
		r.Post("/samples", fatigueHandler.RecordSample)
		r.Post("/rest", fatigueHandler.RecordRest)
	})

	r.Route("/preferences/{userID}", func(r chi.Router) {
		r.Get("/", prefsHandler.Get)
		r.Put("/", prefsHandler.Put)
	})

	return r
}
