package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"time"
)

type featureCollection struct {
	Type       string         `json:"type"`
	Features   []feature      `json:"features"`
	Properties map[string]any `json:"properties,omitempty"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// GeoJSONRenderer draws a plan as a FeatureCollection: one numbered Point per
// stop in visiting order followed by a LineString for the route. Coordinates
// are [lon, lat].
type GeoJSONRenderer struct{}

func (GeoJSONRenderer) ContentType() string { return "application/geo+json" }

func (GeoJSONRenderer) Render(plan *domain.Plan) ([]byte, error) {
	if plan == nil {
		return nil, errors.New("render geojson: plan is nil")
	}

	entries := make(map[int]domain.ScheduleEntry, len(plan.Schedule))
	for _, e := range plan.Schedule {
		entries[e.StopIndex] = e
	}

	features := make([]feature, 0, len(plan.Tour)+1)
	line := make([][]float64, 0, len(plan.Tour))

	for pos, idx := range plan.Tour {
		if idx < 0 || idx >= len(plan.Stops) {
			return nil, fmt.Errorf("render geojson: tour position %d references unknown stop %d", pos, idx)
		}
		s := plan.Stops[idx]
		coord := s.Coord.CoordsToList()
		line = append(line, coord)

		props := map[string]any{
			"order": pos + 1,
			"index": s.Index,
			"name":  s.Label(),
			"role":  string(s.Role),
		}
		if e, ok := entries[idx]; ok {
			props["arrival"] = e.Arrival.Format(time.RFC3339)
			props["departure"] = e.Departure.Format(time.RFC3339)
			if e.HasWarning() {
				props["warning"] = string(e.Warning)
			}
		}

		features = append(features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "Point", Coordinates: coord},
			Properties: props,
		})
	}

	if len(line) >= 2 {
		features = append(features, feature{
			Type:     "Feature",
			Geometry: geometry{Type: "LineString", Coordinates: line},
			Properties: map[string]any{
				"mode":             string(plan.Mode),
				"distance_meters":  plan.TotalDistanceMeters,
				"duration_seconds": plan.TotalDurationSeconds,
				"estimated":        plan.Estimated,
			},
		})
	}

	return json.Marshal(featureCollection{
		Type:       "FeatureCollection",
		Features:   features,
		Properties: map[string]any{"plan_id": plan.ID},
	})
}
