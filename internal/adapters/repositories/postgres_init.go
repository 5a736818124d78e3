package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"os"
	"strings"
	"time"
)

// InitSchema creates the Postgres tables used by the service.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		category TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		opening_hours JSONB NOT NULL DEFAULT '[]'::jsonb
	);
	`

	createTravelCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		mode TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		instructions TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (origin, destination, mode)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createKVQuery := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_places_lat_lon
	ON places(lat, lon);
	`

	statements := []string{
		createPlacesQuery,
		createTravelCacheQuery,
		createGeocodeCacheQuery,
		createKVQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Lon             float64     `json:"lon"`
	Lat             float64     `json:"lat"`
	Category        string      `json:"category"`
	Score           float64     `json:"score"`
	DurationMinutes int         `json:"duration_minutes"`
	OpeningHours    []HoursSeed `json:"opening_hours"`
}

// HoursSeed is an opening window in local "HH:MM" form.
type HoursSeed struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// LoadPlaceSeeds reads and validates a JSON seed file.
func LoadPlaceSeeds(jsonPath string) ([]domain.Place, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed places: parse json: %w", err)
	}

	out := make([]domain.Place, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("seed places: item at index %d: id cannot be empty", i+1)
		}

		c := domain.Coordinates{Lon: item.Lon, Lat: item.Lat}
		if !c.Valid() {
			return nil, fmt.Errorf("seed places: id=%s: invalid coordinates", id)
		}

		hours := make([]domain.OpeningSpan, 0, len(item.OpeningHours))
		for _, h := range item.OpeningHours {
			open, err := parseClock(h.Open)
			if err != nil {
				return nil, fmt.Errorf("seed places: id=%s: open %q: %w", id, h.Open, err)
			}
			closing, err := parseClock(h.Close)
			if err != nil {
				return nil, fmt.Errorf("seed places: id=%s: close %q: %w", id, h.Close, err)
			}
			if closing <= open {
				return nil, fmt.Errorf("seed places: id=%s: closing %s is not after opening %s", id, h.Close, h.Open)
			}
			hours = append(hours, domain.OpeningSpan{Open: open, Close: closing})
		}

		out = append(out, domain.Place{
			ID:                id,
			Name:              strings.TrimSpace(item.Name),
			Coordinates:       c,
			Category:          domain.ParseCategory(item.Category),
			Score:             item.Score,
			PreferredDuration: time.Duration(item.DurationMinutes) * time.Minute,
			OpeningHours:      hours,
		})
	}

	return out, nil
}

// SeedFromJSON upserts the places in jsonPath.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	places, err := LoadPlaceSeeds(jsonPath)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO places (id, name, lon, lat, category, score, duration_minutes, opening_hours)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		category = EXCLUDED.category,
		score = EXCLUDED.score,
		duration_minutes = EXCLUDED.duration_minutes,
		opening_hours = EXCLUDED.opening_hours;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range places {
		hours, err := json.Marshal(p.OpeningHours)
		if err != nil {
			return 0, fmt.Errorf("seed places: encode hours id=%s: %w", p.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			p.ID, p.Name, p.Coordinates.Lon, p.Coordinates.Lat, string(p.Category),
			p.Score, int(p.PreferredDuration/time.Minute), string(hours),
		)
		if err != nil {
			return 0, fmt.Errorf("seed places: insert id=%s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed places: commit tx: %w", err)
	}

	return len(places), nil
}
