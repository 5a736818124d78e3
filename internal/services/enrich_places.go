package services

import (
	"context"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EnrichPlaces fetches details for places in fixed-size concurrent batches.
// A failed lookup keeps the original place; the result has the same order and
// length as the input.
func EnrichPlaces(
	ctx context.Context,
	details ports.PlaceDetailProvider,
	places []domain.Place,
	batchSize int,
	logger *zap.Logger,
) []domain.Place {
	if batchSize < 1 {
		batchSize = 1
	}

	out := make([]domain.Place, len(places))
	copy(out, places)

	for start := 0; start < len(out); start += batchSize {
		end := min(start+batchSize, len(out))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				d, err := details.PlaceDetails(ctx, out[i])
				if err != nil {
					logger.Debug("place detail lookup failed",
						zap.String("place_id", out[i].ID),
						zap.Error(err),
					)
					return nil
				}
				if d.ID != out[i].ID {
					return nil
				}
				out[i] = d
				return nil
			})
		}
		_ = g.Wait()
	}

	return out
}
