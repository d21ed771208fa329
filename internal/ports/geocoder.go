package ports

import (
	"context"
	"itinerary-planner-service/internal/domain"
)

// Contract for resolving a free-form address into coordinates.
type Geocoder interface {
	// Return the best match for address, or an error when nothing matches.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
