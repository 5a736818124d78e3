package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dayWith(ids ...string) DayPlan {
	d := DayPlan{}
	for _, id := range ids {
		d.Stops = append(d.Stops, ItineraryStop{Place: &Place{ID: id}})
	}
	d.Stops = append(d.Stops, ItineraryStop{IsMeal: true})
	return d
}

func TestTripPlanCollisions(t *testing.T) {
	plan := TripPlan{Days: []DayPlan{dayWith("x", "a"), dayWith("b"), dayWith("c", "x")}}
	assert.Equal(t, map[string][]int{"x": {0, 2}}, plan.Collisions())
}

func TestTripPlanWithoutCollisions(t *testing.T) {
	plan := TripPlan{Days: []DayPlan{dayWith("a"), dayWith("b"), dayWith()}}
	assert.Empty(t, plan.Collisions())
}
