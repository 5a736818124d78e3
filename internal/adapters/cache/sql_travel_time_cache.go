package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"

	"go.uber.org/zap"
)

// SQLTravelTimeCache is a SQL-backed cache for origin->destination travel times.
// Rows are keyed by rounded coordinates and travel mode.
type SQLTravelTimeCache struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewSQLTravelTimeCache(db *sql.DB, logger *zap.Logger) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db, Logger: logger}
}

// Get returns the cached result and whether it was present.
func (s *SQLTravelTimeCache) Get(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TravelMode,
) (_ ports.TravelTimeResult, _ bool, err error) {
	defer obs.Time(ctx, s.Logger, "travel.cache.Get")(&err)

	if s.DB == nil {
		return ports.TravelTimeResult{}, false, errors.New("travel cache: db is nil")
	}

	q := `
	SELECT duration_seconds, instructions
	FROM travel_time_cache
	WHERE origin = $1
		AND destination = $2
		AND mode = $3;
	`

	var r ports.TravelTimeResult
	err = s.DB.QueryRowContext(ctx, q, origin.Key(), destination.Key(), string(mode)).
		Scan(&r.DurationSeconds, &r.Instructions)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.TravelTimeResult{}, false, nil
	}
	if err != nil {
		return ports.TravelTimeResult{}, false, fmt.Errorf("get travel cache: query travel_time_cache table: %w", err)
	}

	return r, true, nil
}

// Put stores or replaces one cached travel time.
func (s *SQLTravelTimeCache) Put(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TravelMode,
	r ports.TravelTimeResult,
) error {
	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO travel_time_cache (origin, destination, mode, duration_seconds, instructions)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin, destination, mode) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds,
		instructions = EXCLUDED.instructions;
	`, origin.Key(), destination.Key(), string(mode), r.DurationSeconds, r.Instructions)
	if err != nil {
		return fmt.Errorf("insert travel cache %s -> %s: %w", origin.Key(), destination.Key(), err)
	}

	return nil
}
