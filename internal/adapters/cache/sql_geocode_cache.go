package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
)

// SQLGeocodeCache maps normalized home addresses to coordinates.
type SQLGeocodeCache struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewSQLGeocodeCache(db *sql.DB, logger *zap.Logger) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, Logger: logger}
}

// NormalizeAddress collapses whitespace and case so equivalent inputs share a row.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (s *SQLGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, s.Logger, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	key := NormalizeAddress(address)
	if key == "" {
		return domain.Coordinates{}, false, errors.New("get geocode cache: address must not be empty")
	}

	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, `
	SELECT lon, lat
	FROM geocode_cache
	WHERE address = $1;
	`, key).Scan(&c.Lon, &c.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return c, true, nil
}

func (s *SQLGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	key := NormalizeAddress(address)
	if key == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`, key, c.Lon, c.Lat)
	if err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", key, err)
	}

	return nil
}
