package distance

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
)

// ORSMatrixProvider implements ports.MatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Profile selection per transport mode
//   - Persistent distance caching per (profile, origin, destination)
//   - A single N×N matrix request for cache misses
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	client *ORSClient
	cache  ports.DistanceCache
}

func NewORSMatrixProvider(client *ORSClient, cache ports.DistanceCache) (*ORSMatrixProvider, error) {
	if client == nil {
		return nil, errors.New("ORS client is nil")
	}
	return &ORSMatrixProvider{client: client, cache: cache}, nil
}

// orsProfile maps a routing mode to an ORS profile. The matrix endpoint has
// no avoid options, so both driving modes share driving-car.
func orsProfile(mode domain.TransportMode) string {
	if mode.Driving() {
		return "driving-car"
	}
	return "foot-walking"
}

func (o *ORSMatrixProvider) GetMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
) (_ *domain.Matrix, err error) {
	defer obs.Time(ctx, "ors.GetMatrix")(&err)

	if len(coords) == 0 {
		return nil, errors.New("ORS matrix: no coordinates")
	}

	profile := orsProfile(mode.RoutingMode())
	cacheProfile := "ors-" + profile

	// Check persistent distance cache before issuing external API calls.
	if m, ok := cachedMatrix(ctx, o.cache, cacheProfile, coords); ok {
		return m, nil
	}

	locations := make([][]float64, len(coords))
	for i, c := range coords {
		locations[i] = c.CoordsToList()
	}

	distances, durations, err := o.client.fetchMatrix(ctx, profile, locations)
	if err != nil {
		return nil, fmt.Errorf("ORS matrix %s: %w", profile, err)
	}

	m, err := domain.MatrixFromRows(distances, durations)
	if err != nil {
		return nil, fmt.Errorf("ORS matrix %s: %w", profile, err)
	}

	storeMatrix(ctx, o.cache, cacheProfile, coords, m)
	return m, nil
}
