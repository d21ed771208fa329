package geocode

import (
	"context"
	"errors"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"log"

	"golang.org/x/sync/singleflight"
)

// CachingGeocoder puts a persistent GeocodeCache in front of another
// Geocoder. Concurrent lookups of the same address share one upstream call.
type CachingGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
	group singleflight.Group
}

func NewCachingGeocoder(next ports.Geocoder, cache ports.GeocodeCache) (*CachingGeocoder, error) {
	if next == nil {
		return nil, errors.New("caching geocoder: upstream geocoder is nil")
	}
	return &CachingGeocoder{next: next, cache: cache}, nil
}

func (g *CachingGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	query := normalize(address)
	key := domain.AddressKey(query)
	if key == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{key})
		if err != nil {
			log.Printf("req_id=%s geocode cache read failed: %v", obs.RequestID(ctx), err)
		} else if c, ok := hits[key]; ok {
			return c, nil
		}
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		c, err := g.next.Geocode(ctx, query)
		if err != nil {
			return domain.Coordinates{}, err
		}
		if g.cache != nil {
			if err := g.cache.PutMany(ctx, map[string]domain.Coordinates{key: c}); err != nil {
				log.Printf("req_id=%s geocode cache write failed: %v", obs.RequestID(ctx), err)
			}
		}
		return c, nil
	})
	if err != nil {
		return domain.Coordinates{}, err
	}
	return v.(domain.Coordinates), nil
}
