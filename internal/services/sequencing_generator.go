package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

// SequencingGenerator is a local DayGenerator: it picks the day's anchors and
// best candidates, builds a travel-time graph from the origin and orders them
// with SequenceRoute.
type SequencingGenerator struct {
	Travel   ports.TravelTimeProvider
	Logger   *zap.Logger
	Graph    GraphOptions
	MaxStops int
	DayStart time.Duration
}

func NewSequencingGenerator(travel ports.TravelTimeProvider, logger *zap.Logger, graph GraphOptions) *SequencingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequencingGenerator{
		Travel:   travel,
		Logger:   logger,
		Graph:    graph,
		MaxStops: 6,
		DayStart: 9 * time.Hour,
	}
}

func (g *SequencingGenerator) GenerateDay(ctx context.Context, req ports.DayRequest) ([]ports.GeneratedItem, error) {
	if len(req.Candidates) == 0 {
		return nil, errors.New("sequencing generator: no candidates")
	}

	limit := g.MaxStops
	if g.Graph.MaxNodes > 0 && (limit <= 0 || g.Graph.MaxNodes < limit) {
		limit = g.Graph.MaxNodes
	}
	picked, anchors := pickForDay(req, limit)

	opts := g.Graph
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	graph := BuildTravelGraph(ctx, g.Travel, g.Logger, req.Origin, picked, opts)

	midnight := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	stops := SequenceRoute(graph, OriginNodeID, picked, midnight.Add(g.DayStart))

	items := make([]ports.GeneratedItem, 0, len(stops))
	for _, s := range stops {
		reason := fmt.Sprintf("Top-rated %s close to your route.", s.Place.Category)
		if anchors[s.Place.ID] {
			reason = "Today's highlight."
		}
		items = append(items, ports.GeneratedItem{
			PlaceID:            s.Place.ID,
			Reason:             reason,
			Duration:           s.EstimatedDuration,
			Travel:             s.TravelTimeFromPrevious,
			TravelInstructions: s.TravelInstructions,
		})
	}

	return items, nil
}

// pickForDay keeps anchors first, then the remaining unused candidates in their
// given (score) order, up to limit.
func pickForDay(req ports.DayRequest, limit int) ([]domain.Place, map[string]bool) {
	anchors := make(map[string]bool, len(req.AnchorIDs))
	for _, id := range req.AnchorIDs {
		anchors[id] = true
	}
	used := make(map[string]bool, len(req.UsedIDs))
	for _, id := range req.UsedIDs {
		used[id] = true
	}

	picked := make([]domain.Place, 0, limit)
	for _, p := range req.Candidates {
		if anchors[p.ID] {
			picked = append(picked, p)
		}
	}
	for _, p := range req.Candidates {
		if limit > 0 && len(picked) >= limit {
			break
		}
		if anchors[p.ID] || used[p.ID] {
			continue
		}
		picked = append(picked, p)
	}

	return picked, anchors
}
