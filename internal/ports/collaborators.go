package ports

import (
	"context"
	"itinerary-planner-service/internal/domain"
)

// Toll lookup for a driving tour. Implementations must return a non-negative
// total for the tour given the distance of each consecutive leg.
type TollCalculator interface {
	Total(ctx context.Context, tour domain.Tour, legDistances []float64) (float64, error)
}

// Delivery of the human-readable itinerary to a recipient.
type Notifier interface {
	Send(ctx context.Context, recipient string, text string) error
}

// Read-only consumer that draws a plan (markers + route line).
type PlanRenderer interface {
	Render(plan *domain.Plan) ([]byte, error)
	ContentType() string
}
