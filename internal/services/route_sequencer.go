package services

import (
	"itinerary-service/internal/domain"
	"math"
	"time"
)

// SequenceRoute orders candidates with a greedy nearest-neighbor walk over graph,
// starting at originID.
//
// At each step the unvisited candidate with the smallest travel time from the
// current node wins; the first-encountered minimum breaks ties, so output is
// deterministic for a given input order. A candidate without an edge from the
// current node is skipped permanently. The walk ends when no reachable candidate
// remains, which may leave some candidates unplaced.
//
// The running clock advances by travel time plus each place's visit duration.
// Complexity is O(n²).
func SequenceRoute(
	graph *TravelGraph,
	originID string,
	candidates []domain.Place,
	departAt time.Time,
) []domain.ItineraryStop {
	remaining := make([]*domain.Place, 0, len(candidates))
	for i := range candidates {
		remaining = append(remaining, &candidates[i])
	}

	current := originID
	clock := departAt
	stops := []domain.ItineraryStop{}

	for len(remaining) > 0 {
		bestIdx := -1
		minDuration := math.MaxInt
		var bestEdge domain.TravelEdge

		kept := remaining[:0]
		for _, p := range remaining {
			e, ok := graph.Edge(current, p.ID)
			if !ok {
				continue
			}
			kept = append(kept, p)

			// Strict comparison keeps the first-encountered minimum.
			if e.DurationSeconds < minDuration {
				minDuration = e.DurationSeconds
				bestIdx = len(kept) - 1
				bestEdge = e
			}
		}
		remaining = kept

		if bestIdx < 0 {
			break
		}

		best := remaining[bestIdx]
		travel := bestEdge.Duration()
		start := clock.Add(travel)
		dur := best.VisitDuration()
		end := start.Add(dur)

		place := *best
		stops = append(stops, domain.ItineraryStop{
			Order:                  len(stops) + 1,
			Place:                  &place,
			StartTime:              start,
			EndTime:                end,
			EstimatedDuration:      dur,
			TravelTimeFromPrevious: &travel,
			TravelInstructions:     bestEdge.Instructions,
		})

		clock = end
		current = best.ID
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return stops
}
