package services

import (
	"context"
	"errors"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	OriginNodeID = "origin"

	FallbackTravelSeconds = 900
	FallbackInstructions  = "Estimated travel time"
)

var errNoTravelProvider = errors.New("travel graph: no travel-time provider")

// A node in the travel-time graph: the day origin or a candidate place.
type GraphNode struct {
	ID          string
	Coordinates domain.Coordinates
}

// TravelGraph is a complete directed graph of travel durations built per request.
// Edges may be asymmetric.
type TravelGraph struct {
	Nodes []GraphNode
	edges map[string]domain.TravelEdge
}

func NewTravelGraph(nodes []GraphNode) *TravelGraph {
	return &TravelGraph{
		Nodes: nodes,
		edges: make(map[string]domain.TravelEdge, len(nodes)*len(nodes)),
	}
}

func edgeKey(from, to string) string { return from + "|" + to }

func (g *TravelGraph) SetEdge(e domain.TravelEdge) {
	g.edges[edgeKey(e.From, e.To)] = e
}

// Edge returns the directed edge from -> to, if present.
func (g *TravelGraph) Edge(from, to string) (domain.TravelEdge, bool) {
	e, ok := g.edges[edgeKey(from, to)]
	return e, ok
}

func (g *TravelGraph) EdgeCount() int { return len(g.edges) }

type GraphOptions struct {
	// MaxNodes caps candidate places (the origin is not counted).
	MaxNodes int
	Mode     domain.TravelMode
	// CallInterval is the minimum spacing between provider calls.
	CallInterval time.Duration
	// OnFallback is invoked once per substituted edge.
	OnFallback func(from, to string, err error)
}

func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes:     8,
		Mode:         domain.TravelModeWalking,
		CallInterval: 100 * time.Millisecond,
	}
}

func fallbackEdge(from, to string) domain.TravelEdge {
	return domain.TravelEdge{
		From:            from,
		To:              to,
		DurationSeconds: FallbackTravelSeconds,
		Instructions:    FallbackInstructions,
		Estimated:       true,
	}
}

// BuildTravelGraph queries the provider for every ordered pair among the origin
// and up to MaxNodes candidates. Calls are serialized and paced by a rate limiter.
//
// A failed lookup (provider error, cancelled context, nil provider) is replaced by
// a fixed 900s estimate, so the returned graph is always complete.
func BuildTravelGraph(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	logger *zap.Logger,
	origin domain.Coordinates,
	candidates []domain.Place,
	opts GraphOptions,
) *TravelGraph {
	if opts.MaxNodes > 0 && len(candidates) > opts.MaxNodes {
		candidates = candidates[:opts.MaxNodes]
	}
	if opts.Mode == "" {
		opts.Mode = domain.TravelModeWalking
	}

	nodes := make([]GraphNode, 0, 1+len(candidates))
	nodes = append(nodes, GraphNode{ID: OriginNodeID, Coordinates: origin})
	for _, p := range candidates {
		nodes = append(nodes, GraphNode{ID: p.ID, Coordinates: p.Coordinates})
	}

	graph := NewTravelGraph(nodes)

	limit := rate.Inf
	if opts.CallInterval > 0 {
		limit = rate.Every(opts.CallInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	fallbacks := 0
	for _, from := range nodes {
		for _, to := range nodes {
			if from.ID == to.ID {
				continue
			}

			edge, err := queryEdge(ctx, provider, limiter, from, to, opts.Mode)
			if err != nil {
				fallbacks++
				if opts.OnFallback != nil {
					opts.OnFallback(from.ID, to.ID, err)
				}
				logger.Debug("travel edge fallback",
					zap.String("from", from.ID),
					zap.String("to", to.ID),
					zap.Error(err),
				)
				edge = fallbackEdge(from.ID, to.ID)
			}
			graph.SetEdge(edge)
		}
	}

	if fallbacks > 0 {
		logger.Info("travel graph built with fallbacks",
			zap.Int("nodes", len(nodes)),
			zap.Int("edges", graph.EdgeCount()),
			zap.Int("fallbacks", fallbacks),
		)
	}

	return graph
}

func queryEdge(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	limiter *rate.Limiter,
	from, to GraphNode,
	mode domain.TravelMode,
) (domain.TravelEdge, error) {
	if provider == nil {
		return domain.TravelEdge{}, errNoTravelProvider
	}

	if err := limiter.Wait(ctx); err != nil {
		return domain.TravelEdge{}, err
	}

	r, err := provider.TravelTime(ctx, from.Coordinates, to.Coordinates, mode)
	if err != nil {
		return domain.TravelEdge{}, err
	}

	return domain.TravelEdge{
		From:            from.ID,
		To:              to.ID,
		DurationSeconds: r.DurationSeconds,
		Instructions:    r.Instructions,
	}, nil
}
