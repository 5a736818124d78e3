package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/api/dto"
	"itinerary-service/internal/app"
	"itinerary-service/internal/config"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/db"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type env struct {
	cfg    config.Config
	logger *zap.Logger
	db     *sql.DB
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Database and planning utilities for the itinerary service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.db != nil {
				_ = e.db.Close()
			}
			_ = e.logger.Sync()
			return nil
		},
	}

	root.AddCommand(newMigrateCmd(e), newSeedCmd(e), newPlanCmd(e))
	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.Debug)
	if err != nil {
		return err
	}
	if !dotenv {
		logger.Info("no .env file found (using environment variables)")
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultOptions())
	if err != nil {
		return err
	}

	e.cfg, e.logger, e.db = cfg, logger, conn
	return nil
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e.logger.Info("initializing database schema")
			if err := repositories.InitSchema(cmd.Context(), e.db); err != nil {
				return err
			}
			e.logger.Info("schema ready")
			return nil
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load places from a JSON seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = e.cfg.SeedPath
			}
			if err := repositories.InitSchema(cmd.Context(), e.db); err != nil {
				return err
			}
			n, err := repositories.SeedFromJSON(cmd.Context(), e.db, path)
			if err != nil {
				return err
			}
			e.logger.Info("seeding complete", zap.Int("places", n), zap.String("path", path))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "seed file (defaults to SEED_PATH)")
	return cmd
}

func newPlanCmd(e *env) *cobra.Command {
	var (
		start, end string
		lat, lon   float64
		mode       string
		mustSee    []string
		avoid      []string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip against the database and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := e.cfg.Location()
			if err != nil {
				return fmt.Errorf("TRIP_TIMEZONE: %w", err)
			}
			startDate, err := time.ParseInLocation("2006-01-02", start, loc)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endDate, err := time.ParseInLocation("2006-01-02", end, loc)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			travel, _, err := app.Travel(e.cfg, e.db, e.logger)
			if err != nil {
				return err
			}
			planner, _, err := app.Planner(e.cfg, e.db, travel, e.logger, nil)
			if err != nil {
				return err
			}

			home := domain.Coordinates{Lat: lat, Lon: lon}
			progress := ports.ProgressFunc(func(ev domain.ProgressEvent) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%3.0f%%] %s %s\n", ev.Progress*100, ev.Message, ev.Detail)
			})

			prefs := domain.UserPreferences{MustSeeIDs: mustSee, AvoidIDs: avoid}
			plan, err := planner.PlanTrip(cmd.Context(), services.PlanTripRequest{
				StartDate:   startDate,
				EndDate:     endDate,
				Home:        &home,
				Preferences: prefs,
				Mode:        domain.TravelMode(mode),
			}, progress)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewTripResponse(plan))
		},
	}

	f := cmd.Flags()
	f.StringVar(&start, "start", "", "first trip day (YYYY-MM-DD)")
	f.StringVar(&end, "end", "", "last trip day (YYYY-MM-DD)")
	f.Float64Var(&lat, "lat", 0, "home latitude")
	f.Float64Var(&lon, "lon", 0, "home longitude")
	f.StringVar(&mode, "mode", "", "walking, driving or transit (defaults to the tuning file)")
	f.StringSliceVar(&mustSee, "must-see", nil, "place ids that must be visited")
	f.StringSliceVar(&avoid, "avoid", nil, "place ids to skip")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
