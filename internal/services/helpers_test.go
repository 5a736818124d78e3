package services

import (
	"fmt"
	"itinerary-service/internal/domain"
	"time"
)

var abuDhabi = domain.Coordinates{Lat: 24.45, Lon: 54.38}

// placesAround returns n places spread a few hundred meters apart east of
// center, with descending scores.
func placesAround(center domain.Coordinates, n int) []domain.Place {
	out := make([]domain.Place, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Place{
			ID:                fmt.Sprintf("p%02d", i),
			Name:              fmt.Sprintf("Place %d", i),
			Coordinates:       domain.Coordinates{Lat: center.Lat + 0.001*float64(i%5), Lon: center.Lon + 0.002*float64(i/5+1)},
			Category:          domain.CategoryLandmark,
			Score:             float64(100 - i),
			PreferredDuration: time.Hour,
		})
	}
	return out
}

func clockAt(date time.Time, h, m int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}

func durPtr(d time.Duration) *time.Duration { return &d }
