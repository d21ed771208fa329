package domain

import (
	"fmt"
	"math"
	"strings"
)

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key returns a stable cache key with micro-degree precision (~0.1 m).
func (c Coordinates) Key() string { return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon) }

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// AddressKey normalizes a free-form address for cache lookups: whitespace is
// collapsed and letters are lower-cased.
func AddressKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
