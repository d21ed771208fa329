package distance

import (
	"context"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"log"
)

// cachedMatrix assembles a matrix from the distance cache. It reports false
// unless every off-diagonal pair is cached; a partial hit still costs one
// full provider request. Cache read errors count as misses.
func cachedMatrix(
	ctx context.Context,
	cache ports.DistanceCache,
	profile string,
	coords []domain.Coordinates,
) (*domain.Matrix, bool) {
	if cache == nil {
		return nil, false
	}

	keys := coordKeys(coords)
	m := domain.NewMatrix(len(coords))

	for i, origin := range keys {
		destinations := make([]string, 0, len(keys))
		for j, k := range keys {
			if i != j && k != origin {
				destinations = append(destinations, k)
			}
		}
		if len(destinations) == 0 {
			continue
		}

		hits, err := cache.GetMany(ctx, profile, origin, destinations)
		if err != nil {
			log.Printf("req_id=%s distance cache read failed profile=%s: %v", obs.RequestID(ctx), profile, err)
			return nil, false
		}

		for j, k := range keys {
			if i == j || k == origin {
				continue
			}
			r, ok := hits[k]
			if !ok {
				return nil, false
			}
			m.Set(i, j, domain.Leg{DistanceMeters: r.DistanceMeters, DurationSeconds: r.DurationSeconds})
		}
	}

	return m, true
}

// storeMatrix writes every row of m to the cache. Failures are logged only.
func storeMatrix(
	ctx context.Context,
	cache ports.DistanceCache,
	profile string,
	coords []domain.Coordinates,
	m *domain.Matrix,
) {
	if cache == nil {
		return
	}

	keys := coordKeys(coords)
	for i, origin := range keys {
		row := make(map[string]ports.DistanceResult, len(keys))
		for j, k := range keys {
			if i == j || k == origin {
				continue
			}
			l := m.At(i, j)
			row[k] = ports.DistanceResult{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds}
		}
		if len(row) == 0 {
			continue
		}
		if err := cache.PutMany(ctx, profile, origin, row); err != nil {
			log.Printf("req_id=%s distance cache write failed profile=%s: %v", obs.RequestID(ctx), profile, err)
			return
		}
	}
}

func coordKeys(coords []domain.Coordinates) []string {
	keys := make([]string, len(coords))
	for i, c := range coords {
		keys[i] = c.Key()
	}
	return keys
}
