package toll

import (
	"context"
	"fmt"
	"itinerary-planner-service/internal/domain"
)

// ZeroTollCalculator charges nothing for any tour. It keeps the
// (tour, per-leg distance) contract so a fee table can replace it later.
type ZeroTollCalculator struct{}

func (ZeroTollCalculator) Total(ctx context.Context, tour domain.Tour, legDistances []float64) (float64, error) {
	if len(tour) > 0 && len(legDistances) != len(tour)-1 {
		return 0, fmt.Errorf("toll total: %d legs for a tour of %d stops", len(legDistances), len(tour))
	}
	return 0, nil
}
