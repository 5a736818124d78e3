package traveltime

import (
	"context"
	"errors"
	"fmt"
	"itinerary-service/internal/adapters/cache"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/httpx"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ORS has no public transit profile; driving is the closest proxy.
var orsProfiles = map[domain.TravelMode]string{
	domain.TravelModeWalking: "foot-walking",
	domain.TravelModeDriving: "driving-car",
	domain.TravelModeTransit: "driving-car",
}

// ORSProvider implements TravelTimeProvider and Geocoder using OpenRouteService.
//
// It coordinates:
//   - Persistent travel-time caching keyed by rounded coordinates and mode
//   - Persistent geocode caching for home addresses
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	client       *httpx.Client
	baseURL      string
	country      string
	travelCache  *cache.SQLTravelTimeCache
	geocodeCache *cache.SQLGeocodeCache
	logger       *zap.Logger
}

type ORSOptions struct {
	APIKey  string
	BaseURL string
	// Country restricts geocoding results (ISO alpha-2); empty means worldwide.
	Country string
	Timeout time.Duration
}

func NewORSProvider(
	opts ORSOptions,
	travelCache *cache.SQLTravelTimeCache,
	geocodeCache *cache.SQLGeocodeCache,
	logger *zap.Logger,
) (*ORSProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultORSBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &ORSProvider{
		client:       httpx.NewClient(opts.Timeout, map[string]string{"Authorization": opts.APIKey}),
		baseURL:      opts.BaseURL,
		country:      opts.Country,
		travelCache:  travelCache,
		geocodeCache: geocodeCache,
		logger:       logger,
	}, nil
}

func (o *ORSProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TravelMode,
) (_ ports.TravelTimeResult, err error) {
	defer obs.Time(ctx, o.logger, "ors.TravelTime")(&err)

	if !origin.Valid() || !destination.Valid() {
		return ports.TravelTimeResult{}, errors.New("ors travel time: invalid coordinates")
	}
	if origin.Key() == destination.Key() {
		return ports.TravelTimeResult{}, nil
	}

	profile, ok := orsProfiles[mode]
	if !ok {
		return ports.TravelTimeResult{}, fmt.Errorf("ors travel time: unsupported mode %q", mode)
	}

	// Check persistent cache before issuing external API calls.
	if o.travelCache != nil {
		hit, found, err := o.travelCache.Get(ctx, origin, destination, mode)
		if err != nil {
			o.logger.Warn("travel cache read failed", zap.Error(err))
		} else if found {
			return hit, nil
		}
	}

	r, err := o.fetchDirections(ctx, profile, origin, destination)
	if err != nil {
		return ports.TravelTimeResult{}, fmt.Errorf("fetching directions: %w", err)
	}

	if o.travelCache != nil {
		if err := o.travelCache.Put(ctx, origin, destination, mode, r); err != nil {
			o.logger.Warn("travel cache write failed", zap.Error(err))
		}
	}

	return r, nil
}

// Geocode resolves a home address, consulting the geocode cache first.
func (o *ORSProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, o.logger, "ors.Geocode")(&err)

	norm := cache.NormalizeAddress(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}

	if o.geocodeCache != nil {
		hit, found, err := o.geocodeCache.Get(ctx, norm)
		if err != nil {
			o.logger.Warn("geocode cache read failed", zap.Error(err))
		} else if found {
			return hit, nil
		}
	}

	c, err := o.geocode(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("retrieving coordinates: %w", err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.Put(ctx, norm, c); err != nil {
			o.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}

	return c, nil
}
