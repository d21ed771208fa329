package geocode

import (
	"context"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/ports"
	"strings"
)

// StaticGeocoder answers from a fixed table of known places, matched
// case-insensitively. It backs offline runs and tests.
type StaticGeocoder struct {
	places map[string]domain.Coordinates
}

func NewStaticGeocoder(places map[string]domain.Coordinates) *StaticGeocoder {
	m := make(map[string]domain.Coordinates, len(places))
	for name, c := range places {
		m[domain.AddressKey(name)] = c
	}
	return &StaticGeocoder{places: m}
}

func (g *StaticGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	c, ok := g.places[domain.AddressKey(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("unknown place %q", address)
	}
	return c, nil
}

// Fallback tries each geocoder in order and returns the first match.
type Fallback []ports.Geocoder

func (f Fallback) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	var errs []string
	for _, g := range f {
		c, err := g.Geocode(ctx, address)
		if err == nil {
			return c, nil
		}
		if ctx.Err() != nil {
			return domain.Coordinates{}, ctx.Err()
		}
		errs = append(errs, err.Error())
	}
	return domain.Coordinates{}, fmt.Errorf("geocode %q: %s", address, strings.Join(errs, "; "))
}
