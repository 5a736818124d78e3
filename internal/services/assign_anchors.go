package services

import (
	"cmp"
	"itinerary-service/internal/domain"
	"slices"
	"time"
)

// AnchorAssignment maps a trip date key (see domain.DateKey) to anchor place ids.
type AnchorAssignment map[string][]string

// byScoreDesc orders places by descending score; the stable sort keeps input
// order among equal scores.
func byScoreDesc(places []domain.Place) []domain.Place {
	out := slices.Clone(places)
	slices.SortStableFunc(out, func(a, b domain.Place) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// AssignAnchors distributes guaranteed daily highlights across the trip.
//
// Pass 1 places must-see ids round-robin across days in score order until the
// must-sees or the day capacity run out. Pass 2 tops up each day with the
// highest-scored unused places that are not must-sees. Every assigned id is
// added to used and is never assigned again.
func AssignAnchors(
	days []time.Time,
	places []domain.Place,
	mustSee []string,
	capacity int,
	used *UsedPlaces,
) AnchorAssignment {
	if capacity <= 0 {
		capacity = 1
	}

	out := make(AnchorAssignment, len(days))
	for _, d := range days {
		out[domain.DateKey(d)] = []string{}
	}
	if len(days) == 0 {
		return out
	}

	mustSet := make(map[string]struct{}, len(mustSee))
	for _, id := range mustSee {
		mustSet[id] = struct{}{}
	}

	ranked := byScoreDesc(places)

	// Pass 1: must-sees round-robin.
	cursor := 0
	for _, p := range ranked {
		if _, ok := mustSet[p.ID]; !ok || used.Has(p.ID) {
			continue
		}

		day, ok := nextDayWithCapacity(out, days, cursor, capacity)
		if !ok {
			break
		}
		key := domain.DateKey(days[day])
		out[key] = append(out[key], p.ID)
		used.Add(p.ID)
		cursor = (day + 1) % len(days)
	}

	// Pass 2: fill remaining capacity from top-scored others.
	next := 0
	for _, d := range days {
		key := domain.DateKey(d)
		for len(out[key]) < capacity && next < len(ranked) {
			p := ranked[next]
			next++
			if _, ok := mustSet[p.ID]; ok || used.Has(p.ID) {
				continue
			}
			out[key] = append(out[key], p.ID)
			used.Add(p.ID)
		}
	}

	return out
}

func nextDayWithCapacity(out AnchorAssignment, days []time.Time, from, capacity int) (int, bool) {
	for i := 0; i < len(days); i++ {
		idx := (from + i) % len(days)
		if len(out[domain.DateKey(days[idx])]) < capacity {
			return idx, true
		}
	}
	return 0, false
}
