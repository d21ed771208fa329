package ports

import (
	"context"
	"itinerary-planner-service/internal/domain"
)

// Persistent origin->destination cache, partitioned by routing profile.
// Keys are expected to be normalized by the caller (domain.Coordinates.Key).
type DistanceCache interface {
	GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, profile, origin string, results map[string]DistanceResult) error
}

// Persistent address->coordinate cache. Address keys are normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
