package domain

import (
	"strings"
	"time"
)

// Category is the closed set of place kinds that drive duration and energy lookups.
type Category string

const (
	CategoryUnknown    Category = "unknown"
	CategoryMuseum     Category = "museum"
	CategoryLandmark   Category = "landmark"
	CategoryPark       Category = "park"
	CategoryNature     Category = "nature"
	CategoryBeach      Category = "beach"
	CategoryShopping   Category = "shopping"
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryNightlife  Category = "nightlife"
	CategoryReligious  Category = "religious"
	CategorySpa        Category = "spa"
)

var categoryAliases = map[string]Category{
	"museum":      CategoryMuseum,
	"gallery":     CategoryMuseum,
	"art_gallery": CategoryMuseum,
	"landmark":    CategoryLandmark,
	"monument":    CategoryLandmark,
	"attraction":  CategoryLandmark,
	"park":        CategoryPark,
	"garden":      CategoryPark,
	"nature":      CategoryNature,
	"hiking":      CategoryNature,
	"beach":       CategoryBeach,
	"shopping":    CategoryShopping,
	"mall":        CategoryShopping,
	"market":      CategoryShopping,
	"restaurant":  CategoryRestaurant,
	"food":        CategoryRestaurant,
	"cafe":        CategoryCafe,
	"coffee":      CategoryCafe,
	"nightlife":   CategoryNightlife,
	"bar":         CategoryNightlife,
	"religious":   CategoryReligious,
	"mosque":      CategoryReligious,
	"church":      CategoryReligious,
	"temple":      CategoryReligious,
	"spa":         CategorySpa,
	"wellness":    CategorySpa,
}

// ParseCategory maps a provider category string onto the closed Category set.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryUnknown
}

var defaultDurations = map[Category]time.Duration{
	CategoryMuseum:     120 * time.Minute,
	CategoryLandmark:   60 * time.Minute,
	CategoryPark:       60 * time.Minute,
	CategoryNature:     150 * time.Minute,
	CategoryBeach:      120 * time.Minute,
	CategoryShopping:   90 * time.Minute,
	CategoryRestaurant: 75 * time.Minute,
	CategoryCafe:       45 * time.Minute,
	CategoryNightlife:  120 * time.Minute,
	CategoryReligious:  45 * time.Minute,
	CategorySpa:        120 * time.Minute,
	CategoryUnknown:    60 * time.Minute,
}

// DefaultDuration is the visit length used when a place carries none.
func (c Category) DefaultDuration() time.Duration {
	if d, ok := defaultDurations[c]; ok {
		return d
	}
	return defaultDurations[CategoryUnknown]
}

// OpeningSpan is an opening window expressed as offsets from local midnight.
type OpeningSpan struct {
	Open  time.Duration `json:"open"`
	Close time.Duration `json:"close"`
}

// Represents a candidate point of interest returned by a place provider.
// A Place is immutable once fetched.
type Place struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Coordinates       Coordinates   `json:"coordinates"`
	Category          Category      `json:"category"`
	Score             float64       `json:"score"`
	PreferredDuration time.Duration `json:"preferred_duration"`
	OpeningHours      []OpeningSpan `json:"opening_hours,omitempty"`
}

// VisitDuration returns the preferred duration, falling back to the category default.
func (p Place) VisitDuration() time.Duration {
	if p.PreferredDuration > 0 {
		return p.PreferredDuration
	}
	return p.Category.DefaultDuration()
}

// HasHours reports whether opening hours constrain this place today.
func (p Place) HasHours() bool { return len(p.OpeningHours) > 0 }
