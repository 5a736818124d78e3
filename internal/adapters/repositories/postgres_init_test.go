package repositories

import (
	"itinerary-service/internal/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPlaceSeeds(t *testing.T) {
	path := writeSeed(t, `[
		{"id": "louvre", "name": " Louvre ", "lon": 2.3376, "lat": 48.8606, "category": "Art Gallery",
		 "score": 4.8, "duration_minutes": 180,
		 "opening_hours": [{"open": "09:00", "close": "18:00"}]},
		{"id": "pont-neuf", "name": "Pont Neuf", "lon": 2.3413, "lat": 48.8572, "category": "bridge", "score": 4.1}
	]`)

	places, err := LoadPlaceSeeds(path)
	require.NoError(t, err)
	require.Len(t, places, 2)

	louvre := places[0]
	assert.Equal(t, "Louvre", louvre.Name)
	assert.Equal(t, domain.CategoryMuseum, louvre.Category)
	assert.Equal(t, 3*time.Hour, louvre.PreferredDuration)
	assert.Equal(t, []domain.OpeningSpan{{Open: 9 * time.Hour, Close: 18 * time.Hour}}, louvre.OpeningHours)

	assert.Equal(t, domain.CategoryUnknown, places[1].Category)
	assert.Equal(t, time.Hour, places[1].VisitDuration())
}

func TestLoadPlaceSeedsRejectsBadRows(t *testing.T) {
	tests := map[string]string{
		"missing id":     `[{"name": "x", "lon": 1, "lat": 1}]`,
		"zero point":     `[{"id": "x", "lon": 0, "lat": 0}]`,
		"bad clock":      `[{"id": "x", "lon": 1, "lat": 1, "opening_hours": [{"open": "9am", "close": "17:00"}]}]`,
		"inverted hours": `[{"id": "x", "lon": 1, "lat": 1, "opening_hours": [{"open": "17:00", "close": "09:00"}]}]`,
		"not json":       `{`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPlaceSeeds(writeSeed(t, body))
			assert.Error(t, err)
		})
	}
}
