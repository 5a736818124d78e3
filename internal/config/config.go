package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func GetBool(key string, fallback bool) bool {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Config is the process configuration assembled from the environment.
type Config struct {
	Env          string
	Debug        bool
	Port         string
	DatabaseURL  string
	StateBackend string
	RedisURL     string
	ORSAPIKey    string
	ORSBaseURL   string
	ORSCountry   string
	GeneratorURL string
	GeneratorKey string
	SeedPath     string
	TripTimeZone string
	TuningPath   string
	PlaceRadius  float64
	Tuning       Tuning
}

// Load reads .env when present, then the environment, then the optional tuning file.
// It reports whether a .env file was found so callers can log it.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil

	radius, err := strconv.ParseFloat(Get("PLACE_RADIUS_KM", "25"), 64)
	if err != nil {
		return Config{}, dotenv, fmt.Errorf("load config: PLACE_RADIUS_KM: %w", err)
	}

	cfg := Config{
		Env:          Get("APP_ENV", "development"),
		Debug:        GetBool("DEBUG", false),
		Port:         Get("PORT", "8080"),
		DatabaseURL:  Get("DATABASE_URL", ""),
		StateBackend: Get("STATE_BACKEND", "postgres"),
		RedisURL:     Get("REDIS_URL", "redis://localhost:6379/0"),
		ORSAPIKey:    Get("ORS_API_KEY", ""),
		ORSBaseURL:   Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSCountry:   Get("ORS_COUNTRY", ""),
		GeneratorURL: Get("GENERATOR_URL", ""),
		GeneratorKey: Get("GENERATOR_API_KEY", ""),
		SeedPath:     Get("SEED_PATH", "data/seeds/places.json"),
		TripTimeZone: Get("TRIP_TIMEZONE", "UTC"),
		TuningPath:   Get("PLANNER_CONFIG", ""),
		PlaceRadius:  radius,
		Tuning:       DefaultTuning(),
	}

	if cfg.TuningPath != "" {
		t, err := LoadTuning(cfg.TuningPath)
		if err != nil {
			return Config{}, dotenv, fmt.Errorf("load config: %w", err)
		}
		cfg.Tuning = t
	}

	return cfg, dotenv, nil
}

// Validate checks settings that have no reasonable default.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required")
	}
	switch c.StateBackend {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("validate config: STATE_BACKEND must be postgres, redis or memory, got %q", c.StateBackend)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("validate config: TRIP_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves TripTimeZone, the zone trip dates are interpreted in when a
// request names none.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TripTimeZone)
}
