package traveltime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"math"
	"net/http"
	"strings"
)

// Only the first few steps are kept as a readable summary.
const maxInstructionSteps = 3

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Units        string      `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Steps []struct {
				Instruction string `json:"instruction"`
			} `json:"steps"`
		} `json:"segments"`
	} `json:"routes"`
}

// fetchDirections retrieves one route from origin to destination
// using the OpenRouteService directions endpoint.
func (o *ORSProvider) fetchDirections(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.TravelTimeResult, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates:  [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Instructions: true,
		Units:        "m",
	})
	if err != nil {
		return ports.TravelTimeResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.TravelTimeResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.TravelTimeResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return ports.TravelTimeResult{}, errors.New("directions returned no routes")
	}
	route := dr.Routes[0]

	var steps []string
	for _, seg := range route.Segments {
		for _, st := range seg.Steps {
			if len(steps) == maxInstructionSteps {
				break
			}
			if s := strings.TrimSpace(st.Instruction); s != "" {
				steps = append(steps, s)
			}
		}
	}

	// ORS returns float metrics; round to nearest second for domain consistency.
	return ports.TravelTimeResult{
		DurationSeconds: int(math.Round(route.Summary.Duration)),
		Instructions:    strings.Join(steps, ", then "),
	}, nil
}
