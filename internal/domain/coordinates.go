package domain

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether the coordinates are inside WGS84 bounds and not the zero point.
func (c Coordinates) Valid() bool {
	if c.Lat == 0 && c.Lon == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key returns a stable cache key rounded to ~1m precision.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// DistanceKm returns the great-circle distance between two points.
func (c Coordinates) DistanceKm(o Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := o.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (o.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Centroid returns the arithmetic mean of the given points, or false when none are valid.
func Centroid(points []Coordinates) (Coordinates, bool) {
	var sumLat, sumLon float64
	n := 0
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		sumLat += p.Lat
		sumLon += p.Lon
		n++
	}
	if n == 0 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}, true
}
