package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"math"
	"time"

	"go.uber.org/zap"
)

const kmPerDegreeLat = 111.32

// Postgres-backed implementation of the PlaceProvider and PlaceDetailProvider ports.
type PostgresPlaceRepository struct {
	DB     *sql.DB
	Logger *zap.Logger
	// RadiusKm bounds ListPlaces around the origin; zero disables the filter.
	RadiusKm float64
}

func NewPostgresPlaceRepository(db *sql.DB, logger *zap.Logger, radiusKm float64) *PostgresPlaceRepository {
	return &PostgresPlaceRepository{DB: db, Logger: logger, RadiusKm: radiusKm}
}

// ListPlaces returns places near origin ordered by descending score. Opening
// hours are left empty; PlaceDetails fills them in.
func (s *PostgresPlaceRepository) ListPlaces(ctx context.Context, origin domain.Coordinates) (_ []domain.Place, err error) {
	defer obs.Time(ctx, s.Logger, "places.ListPlaces")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres place repository: DB is nil")
	}

	// A lat/lon box prefilters rows; the exact radius is applied below.
	minLat, maxLat, minLon, maxLon := -90.0, 90.0, -180.0, 180.0
	if s.RadiusKm > 0 {
		dLat := s.RadiusKm / kmPerDegreeLat
		dLon := s.RadiusKm / (kmPerDegreeLat * math.Max(math.Cos(origin.Lat*math.Pi/180), 0.01))
		minLat, maxLat = origin.Lat-dLat, origin.Lat+dLat
		minLon, maxLon = origin.Lon-dLon, origin.Lon+dLon
	}

	query := `
	SELECT id, name, lon, lat, category, score, duration_minutes
	FROM places
	WHERE lat BETWEEN $1 AND $2
		AND lon BETWEEN $3 AND $4
	ORDER BY score DESC, id;
	`
	rows, err := s.DB.QueryContext(ctx, query, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0, 64)
	for rows.Next() {
		var (
			p        domain.Place
			category string
			minutes  int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Coordinates.Lon, &p.Coordinates.Lat, &category, &p.Score, &minutes); err != nil {
			return nil, fmt.Errorf("list places: scan row: %w", err)
		}
		if s.RadiusKm > 0 && origin.DistanceKm(p.Coordinates) > s.RadiusKm {
			continue
		}
		p.Category = domain.ParseCategory(category)
		p.PreferredDuration = time.Duration(minutes) * time.Minute
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list places: row iteration: %w", err)
	}

	return places, nil
}

// PlaceDetails loads opening hours and the stored visit duration for place.
func (s *PostgresPlaceRepository) PlaceDetails(ctx context.Context, place domain.Place) (domain.Place, error) {
	if s.DB == nil {
		return domain.Place{}, errors.New("postgres place repository: DB is nil")
	}

	var (
		minutes int
		raw     []byte
	)
	err := s.DB.QueryRowContext(ctx, `
	SELECT duration_minutes, opening_hours
	FROM places
	WHERE id = $1;
	`, place.ID).Scan(&minutes, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Place{}, fmt.Errorf("place details id=%s: %w", place.ID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Place{}, fmt.Errorf("place details id=%s: %w", place.ID, err)
	}

	var hours []domain.OpeningSpan
	if err := json.Unmarshal(raw, &hours); err != nil {
		return domain.Place{}, fmt.Errorf("place details id=%s: decode hours: %w", place.ID, err)
	}

	place.OpeningHours = hours
	if place.PreferredDuration <= 0 && minutes > 0 {
		place.PreferredDuration = time.Duration(minutes) * time.Minute
	}
	return place, nil
}
