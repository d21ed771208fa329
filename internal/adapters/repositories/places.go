package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"os"
	"strings"
)

// PlaceSeed is one known place: a canonical name, optional short aliases
// that users type instead, and its coordinate.
type PlaceSeed struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
}

// PlaceSeeder stores known places that never expire.
type PlaceSeeder interface {
	PutSeeds(ctx context.Context, places map[string]domain.Coordinates) error
}

// LoadPlaces reads a JSON array of PlaceSeed and returns every name and alias
// keyed by domain.AddressKey.
func LoadPlaces(jsonPath string) (map[string]domain.Coordinates, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load places: parse json: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("load places: item at index %d: name cannot be empty", i+1)
		}

		c := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !c.Valid() {
			return nil, fmt.Errorf("load places: %q: coordinate out of range", name)
		}

		out[domain.AddressKey(name)] = c
		for _, a := range item.Aliases {
			if k := domain.AddressKey(a); k != "" {
				out[k] = c
			}
		}
	}

	return out, nil
}

// SeedPlacesFromJSON loads jsonPath and writes every place into seeder.
// It returns the number of keys written.
func SeedPlacesFromJSON(ctx context.Context, seeder PlaceSeeder, jsonPath string) (int, error) {
	places, err := LoadPlaces(jsonPath)
	if err != nil {
		return 0, err
	}

	if err := seeder.PutSeeds(ctx, places); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	return len(places), nil
}
