package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/httpx"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type candidatePayload struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Score           float64 `json:"score"`
	DurationMinutes int     `json:"duration_minutes"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
}

type dayPayload struct {
	Date       string             `json:"date"`
	DayIndex   int                `json:"day_index"`
	Origin     domain.Coordinates `json:"origin"`
	Mode       string             `json:"mode"`
	Candidates []candidatePayload `json:"candidates"`
	AnchorIDs  []string           `json:"anchor_ids"`
	UsedIDs    []string           `json:"used_ids"`
	MinStops   int                `json:"min_stops"`
}

type itemPayload struct {
	PlaceID            string   `json:"place_id"`
	Reason             string   `json:"reason"`
	DurationMinutes    int      `json:"duration_minutes"`
	TravelMinutes      *float64 `json:"travel_minutes"`
	TravelInstructions string   `json:"travel_instructions"`
	IsMeal             bool     `json:"is_meal"`
}

type dayResponse struct {
	Items []itemPayload `json:"items"`
}

// HTTPGenerator asks a remote content service to order and describe one trip
// day. The response is only trusted for place ids and text; the planner
// validates everything else.
type HTTPGenerator struct {
	client   *httpx.Client
	endpoint string
	logger   *zap.Logger
}

func NewHTTPGenerator(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) (*HTTPGenerator, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("generator base url is empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}

	return &HTTPGenerator{
		client:   httpx.NewClient(timeout, headers),
		endpoint: baseURL + "/v1/days",
		logger:   logger,
	}, nil
}

func (g *HTTPGenerator) GenerateDay(ctx context.Context, req ports.DayRequest) (_ []ports.GeneratedItem, err error) {
	defer obs.Time(ctx, g.logger, "generator.GenerateDay")(&err)

	body := dayPayload{
		Date:       domain.DateKey(req.Date),
		DayIndex:   req.DayIndex,
		Origin:     req.Origin,
		Mode:       string(req.Mode),
		Candidates: make([]candidatePayload, 0, len(req.Candidates)),
		AnchorIDs:  req.AnchorIDs,
		UsedIDs:    req.UsedIDs,
		MinStops:   req.MinStops,
	}
	for _, c := range req.Candidates {
		body.Candidates = append(body.Candidates, candidatePayload{
			ID:              c.ID,
			Name:            c.Name,
			Category:        string(c.Category),
			Score:           c.Score,
			DurationMinutes: int(c.VisitDuration() / time.Minute),
			Lat:             c.Coordinates.Lat,
			Lon:             c.Coordinates.Lon,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal day request: %w", err)
	}

	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return g.client.NewRequest(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("generate day %s: %w", body.Date, err)
	}
	defer resp.Body.Close()

	var dr dayResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode day response: %w", err)
	}

	items := make([]ports.GeneratedItem, 0, len(dr.Items))
	for _, it := range dr.Items {
		id := strings.TrimSpace(it.PlaceID)
		if id == "" && !it.IsMeal {
			continue
		}

		item := ports.GeneratedItem{
			PlaceID:            id,
			Reason:             strings.TrimSpace(it.Reason),
			TravelInstructions: it.TravelInstructions,
			IsMeal:             it.IsMeal,
		}
		if it.DurationMinutes > 0 {
			item.Duration = time.Duration(it.DurationMinutes) * time.Minute
		}
		if it.TravelMinutes != nil && *it.TravelMinutes >= 0 {
			d := time.Duration(*it.TravelMinutes * float64(time.Minute)).Round(time.Minute)
			item.Travel = &d
		}
		items = append(items, item)
	}

	return items, nil
}
