package main

import (
	"context"
	"errors"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/api"
	"itinerary-service/internal/app"
	"itinerary-service/internal/config"
	"itinerary-service/internal/fatigue"
	"itinerary-service/internal/platform/db"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/services"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if !dotenv {
		logger.Info("no .env file found (using environment variables)")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultOptions())
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logger.Fatal("init schema", zap.Error(err))
	}
	if cfg.SeedPath != "" {
		n, err := repositories.SeedFromJSON(ctx, conn, cfg.SeedPath)
		if err != nil {
			logger.Fatal("seed places", zap.Error(err))
		}
		logger.Info("places seeded", zap.Int("count", n), zap.String("path", cfg.SeedPath))
	}

	metrics := obs.NewMetrics("itinerary")

	travel, geocoder, err := app.Travel(cfg, conn, logger)
	if err != nil {
		logger.Fatal("travel provider", zap.Error(err))
	}

	planner, places, err := app.Planner(cfg, conn, travel, logger, metrics)
	if err != nil {
		logger.Fatal("planner", zap.Error(err))
	}

	kv, closeStore, err := app.StateStore(ctx, cfg, conn, logger)
	if err != nil {
		logger.Fatal("state store", zap.Error(err))
	}
	defer closeStore()

	tracker := services.NewFatigueTracker(kv, fatigue.New(app.FatigueConfig(cfg.Tuning)), logger)
	tracker.Metrics = metrics

	// Validate already resolved the zone once.
	loc, _ := cfg.Location()

	deps := api.Deps{
		Places:   places,
		Planner:  planner,
		Fatigue:  tracker,
		Prefs:    services.NewPreferenceService(kv),
		Geocoder: geocoder,
		Location: loc,
		Metrics:  metrics,
		Logger:   logger,
	}
	deps.ReadyChecks = map[string]func(context.Context) error{"database": conn.PingContext}

	// Timeouts are tuned for cold-cache trip planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening",
		zap.String("addr", srv.Addr),
		zap.String("state_backend", cfg.StateBackend),
		zap.Bool("ors", travel != nil),
		zap.Bool("remote_generator", cfg.GeneratorURL != ""),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
