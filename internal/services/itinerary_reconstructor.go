package services

import (
	"cmp"
	"fmt"
	"itinerary-service/internal/domain"
	"slices"
	"strings"
	"time"
)

type ReconstructOptions struct {
	// DayStart is the first possible start, as an offset from local midnight.
	DayStart time.Duration

	// A stop overflowing closing time is retried at max(MinShrink, ShrinkRatio*duration).
	MinShrink   time.Duration
	ShrinkRatio float64

	// Unknown travel is estimated from straight-line distance at EstimateSpeedKmh
	// plus EstimateBuffer, or DefaultTravel when either side lacks coordinates.
	EstimateSpeedKmh float64
	EstimateBuffer   time.Duration
	DefaultTravel    time.Duration

	// MealDuration is used for explicit meal stops that carry no duration.
	MealDuration time.Duration

	OnDrop func(stop domain.ItineraryStop)
}

func DefaultReconstructOptions() ReconstructOptions {
	return ReconstructOptions{
		DayStart:         9 * time.Hour,
		MinShrink:        45 * time.Minute,
		ShrinkRatio:      0.5,
		EstimateSpeedKmh: 25,
		EstimateBuffer:   5 * time.Minute,
		DefaultTravel:    15 * time.Minute,
		MealDuration:     time.Hour,
	}
}

type mealWindow struct {
	label  string
	from   time.Duration
	to     time.Duration
	anchor time.Duration
}

var mealWindows = []mealWindow{
	{label: "Lunch", from: 12 * time.Hour, to: 14 * time.Hour, anchor: 12*time.Hour + 30*time.Minute},
	{label: "Dinner", from: 18 * time.Hour, to: 20 * time.Hour, anchor: 18*time.Hour + 30*time.Minute},
}

// ReconstructItinerary walks stops in order and assigns concrete start/end times
// on date, beginning at opts.DayStart.
//
// Each stop starts after the previous kept stop plus travel, is delayed to
// opening time when early, and is shrunk or dropped when it would run past
// closing. Stop order is preserved and kept stops are renumbered from 1.
// Meal windows overlapping a stop add a suggestion to its reason without
// consuming schedule time.
//
// It fails with domain.ErrMalformedItinerary only when no place stop has usable
// coordinates.
func ReconstructItinerary(
	date time.Time,
	origin domain.Coordinates,
	stops []domain.ItineraryStop,
	opts ReconstructOptions,
) ([]domain.ItineraryStop, error) {
	if len(stops) == 0 {
		return []domain.ItineraryStop{}, nil
	}

	usable := false
	for _, s := range stops {
		if s.Place != nil && s.Place.Coordinates.Valid() {
			usable = true
			break
		}
	}
	if !usable {
		return nil, fmt.Errorf("reconstruct itinerary: %w", domain.ErrMalformedItinerary)
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	clock := midnight.Add(opts.DayStart)
	prevCoords := origin
	prevDropped := false

	out := make([]domain.ItineraryStop, 0, len(stops))
	for _, s := range stops {
		meal := s.IsMeal || s.Place == nil

		travel := travelFromPrevious(s, prevCoords, prevDropped, opts)
		start := clock.Add(travel)

		dur := s.EstimatedDuration
		if dur <= 0 {
			if meal {
				dur = opts.MealDuration
			} else {
				dur = s.Place.VisitDuration()
			}
		}

		if !meal {
			var ok bool
			start, dur, ok = fitOpeningHours(midnight, start, dur, s.Place.OpeningHours, opts)
			if !ok {
				if opts.OnDrop != nil {
					opts.OnDrop(s)
				}
				prevDropped = true
				continue
			}
		}

		s.Order = len(out) + 1
		s.StartTime = start
		s.EndTime = start.Add(dur)
		s.EstimatedDuration = dur
		s.TravelTimeFromPrevious = &travel
		out = append(out, s)

		clock = s.EndTime
		prevDropped = false
		if !meal && s.Place.Coordinates.Valid() {
			prevCoords = s.Place.Coordinates
		}
	}

	annotateMeals(midnight, out)
	return out, nil
}

// travelFromPrevious uses the stop's known travel time unless it is missing or
// was measured from a stop that has since been dropped.
func travelFromPrevious(
	s domain.ItineraryStop,
	prev domain.Coordinates,
	prevDropped bool,
	opts ReconstructOptions,
) time.Duration {
	if s.TravelTimeFromPrevious != nil && !prevDropped {
		return *s.TravelTimeFromPrevious
	}
	if s.Place == nil {
		return 0
	}
	return EstimateTravel(prev, s.Place.Coordinates, opts)
}

// EstimateTravel approximates travel time from straight-line distance.
func EstimateTravel(from, to domain.Coordinates, opts ReconstructOptions) time.Duration {
	if !from.Valid() || !to.Valid() || opts.EstimateSpeedKmh <= 0 {
		return opts.DefaultTravel
	}
	hours := from.DistanceKm(to) / opts.EstimateSpeedKmh
	return (time.Duration(hours*float64(time.Hour)) + opts.EstimateBuffer).Round(time.Minute)
}

func shrinkDuration(d time.Duration, opts ReconstructOptions) time.Duration {
	s := time.Duration(float64(d) * opts.ShrinkRatio)
	if s < opts.MinShrink {
		s = opts.MinShrink
	}
	if s > d {
		s = d
	}
	return s
}

// fitOpeningHours finds the first opening span that can hold the visit, first at
// full length and then shrunk. It reports false when no span fits.
func fitOpeningHours(
	midnight, start time.Time,
	dur time.Duration,
	spans []domain.OpeningSpan,
	opts ReconstructOptions,
) (time.Time, time.Duration, bool) {
	if len(spans) == 0 {
		return start, dur, true
	}

	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b domain.OpeningSpan) int {
		return cmp.Compare(a.Open, b.Open)
	})

	shrunk := shrinkDuration(dur, opts)
	for _, sp := range sorted {
		open := midnight.Add(sp.Open)
		closing := midnight.Add(sp.Close)
		if !closing.After(start) {
			continue
		}

		s := start
		if s.Before(open) {
			s = open
		}

		if !s.Add(dur).After(closing) {
			return s, dur, true
		}
		if shrunk < dur && !s.Add(shrunk).After(closing) {
			return s, shrunk, true
		}
	}

	return start, dur, false
}

func annotateMeals(midnight time.Time, stops []domain.ItineraryStop) {
	for _, w := range mealWindows {
		from := midnight.Add(w.from)
		to := midnight.Add(w.to)

		covered := false
		for _, s := range stops {
			if s.IsMeal && overlaps(s, from, to) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		for i := range stops {
			if stops[i].IsMeal || !overlaps(stops[i], from, to) {
				continue
			}
			at := midnight.Add(w.anchor).Format("15:04")
			note := fmt.Sprintf("%s break suggested around %s nearby.", w.label, at)
			stops[i].Reason = strings.TrimSpace(stops[i].Reason + " " + note)
			break
		}
	}
}

func overlaps(s domain.ItineraryStop, from, to time.Time) bool {
	return s.StartTime.Before(to) && s.EndTime.After(from)
}
