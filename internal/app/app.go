// Package app assembles adapters and services from Config. It is shared by
// the HTTP server and dbtool so both plan trips the same way.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"itinerary-service/internal/adapters/cache"
	"itinerary-service/internal/adapters/generator"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/adapters/store"
	"itinerary-service/internal/adapters/traveltime"
	"itinerary-service/internal/config"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/fatigue"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"time"

	"go.uber.org/zap"
)

// Options converts the tuning file into service options.
func Options(t config.Tuning) (services.PlannerOptions, services.GraphOptions, error) {
	dayStart, err := t.DayStartOffset()
	if err != nil {
		return services.PlannerOptions{}, services.GraphOptions{}, err
	}

	mode := domain.TravelMode(t.Graph.Mode)
	switch mode {
	case domain.TravelModeWalking, domain.TravelModeDriving, domain.TravelModeTransit:
	default:
		return services.PlannerOptions{}, services.GraphOptions{}, fmt.Errorf("tuning: unknown graph mode %q", t.Graph.Mode)
	}

	ropts := services.DefaultReconstructOptions()
	ropts.DayStart = dayStart
	if t.Schedule.MinShrink > 0 {
		ropts.MinShrink = time.Duration(t.Schedule.MinShrink) * time.Minute
	}
	if t.Schedule.ShrinkRatio > 0 {
		ropts.ShrinkRatio = t.Schedule.ShrinkRatio
	}

	popts := services.DefaultPlannerOptions()
	popts.AnchorCapacity = t.Planner.AnchorCapacity
	popts.ShortlistCap = t.Planner.ShortlistCap
	popts.MinStops = t.Planner.MinStops
	popts.LeftoverCount = t.Planner.LeftoverCount
	popts.LeftoverRadiusKm = t.Planner.LeftoverRadius
	popts.EnrichBatchSize = t.Planner.EnrichBatchSize
	popts.Mode = mode
	popts.Reconstruct = ropts

	gopts := services.DefaultGraphOptions()
	gopts.MaxNodes = t.Graph.MaxNodes
	gopts.CallInterval = t.Graph.CallInterval
	gopts.Mode = mode

	return popts, gopts, nil
}

// FatigueConfig converts the tuning file into engine configuration.
func FatigueConfig(t config.Tuning) fatigue.Config {
	c := fatigue.DefaultConfig()
	c.RateConstant = t.Fatigue.RateConstant
	c.TransitRecoveryPerMinute = t.Fatigue.TransitCredit
	c.SmoothingAlpha = t.Fatigue.SmoothingAlpha
	c.TraceLimit = t.Fatigue.TraceLimit
	return c
}

// Travel returns the travel-time provider and geocoder. Without an ORS key
// both are nil: graph edges fall back to the fixed estimate and home must be
// given as coordinates.
func Travel(cfg config.Config, db *sql.DB, logger *zap.Logger) (ports.TravelTimeProvider, ports.Geocoder, error) {
	if cfg.ORSAPIKey == "" {
		logger.Warn("ORS_API_KEY not set; travel times will use the fixed estimate")
		return nil, nil, nil
	}

	ors, err := traveltime.NewORSProvider(traveltime.ORSOptions{
		APIKey:  cfg.ORSAPIKey,
		BaseURL: cfg.ORSBaseURL,
		Country: cfg.ORSCountry,
	}, cache.NewSQLTravelTimeCache(db, logger), cache.NewSQLGeocodeCache(db, logger), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("travel provider: %w", err)
	}

	return traveltime.NewBreakerProvider(ors, traveltime.DefaultBreakerConfig(), logger), ors, nil
}

// Planner wires the place repository, day generator and tuning into a TripPlanner.
// metrics may be nil.
func Planner(
	cfg config.Config,
	db *sql.DB,
	travel ports.TravelTimeProvider,
	logger *zap.Logger,
	metrics *obs.Metrics,
) (*services.TripPlanner, *repositories.PostgresPlaceRepository, error) {
	popts, gopts, err := Options(cfg.Tuning)
	if err != nil {
		return nil, nil, err
	}
	if metrics != nil {
		gopts.OnFallback = func(string, string, error) { metrics.TravelFallbacks.Inc() }
	}

	var gen ports.DayGenerator
	if cfg.GeneratorURL != "" {
		g, err := generator.NewHTTPGenerator(cfg.GeneratorURL, cfg.GeneratorKey, 60*time.Second, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("day generator: %w", err)
		}
		gen = g
	} else {
		sg := services.NewSequencingGenerator(travel, logger, gopts)
		sg.DayStart = popts.Reconstruct.DayStart
		gen = sg
	}

	repo := repositories.NewPostgresPlaceRepository(db, logger, cfg.PlaceRadius)

	planner := services.NewTripPlanner(repo, gen, logger, popts)
	planner.Details = repo
	planner.Metrics = metrics

	return planner, repo, nil
}

// StateStore opens the configured backend. The returned close func releases
// any connection the store owns.
func StateStore(ctx context.Context, cfg config.Config, db *sql.DB, logger *zap.Logger) (ports.StateStore, func() error, error) {
	switch cfg.StateBackend {
	case "redis":
		client, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("state store: %w", err)
		}
		return store.NewRedisStore(client, "itinerary:", logger), client.Close, nil
	case "memory":
		return store.NewMemoryStore(), func() error { return nil }, nil
	default:
		return store.NewPostgresStore(db, logger), func() error { return nil }, nil
	}
}
