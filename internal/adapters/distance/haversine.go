package distance

import (
	"itinerary-planner-service/internal/domain"
	"math"
)

const earthRadiusMeters = 6371000.0

// Default speeds of the straight-line estimator, km/h.
const (
	DefaultWalkSpeedKmh  = 5.0
	DefaultDriveSpeedKmh = 40.0
)

// HaversineEstimator implements ports.MatrixEstimator with great-circle
// distances travelled at a constant per-mode speed. It needs no network and
// always produces a complete matrix.
type HaversineEstimator struct {
	WalkSpeedKmh  float64
	DriveSpeedKmh float64
}

func NewHaversineEstimator(walkKmh, driveKmh float64) *HaversineEstimator {
	if walkKmh <= 0 {
		walkKmh = DefaultWalkSpeedKmh
	}
	if driveKmh <= 0 {
		driveKmh = DefaultDriveSpeedKmh
	}
	return &HaversineEstimator{WalkSpeedKmh: walkKmh, DriveSpeedKmh: driveKmh}
}

func (e *HaversineEstimator) Estimate(coords []domain.Coordinates, mode domain.TransportMode) *domain.Matrix {
	speed := e.speedKmh(mode)
	metersPerSecond := speed * 1000 / 3600

	m := domain.NewMatrix(len(coords))
	for i := range coords {
		for j := range coords {
			if i == j {
				continue
			}
			d := HaversineMeters(coords[i], coords[j])
			m.Set(i, j, domain.Leg{DistanceMeters: d, DurationSeconds: d / metersPerSecond})
		}
	}
	m.Source = domain.SourceEstimated
	return m
}

func (e *HaversineEstimator) speedKmh(mode domain.TransportMode) float64 {
	if mode.RoutingMode().Driving() {
		if e.DriveSpeedKmh > 0 {
			return e.DriveSpeedKmh
		}
		return DefaultDriveSpeedKmh
	}
	if e.WalkSpeedKmh > 0 {
		return e.WalkSpeedKmh
	}
	return DefaultWalkSpeedKmh
}

// HaversineMeters is the great-circle distance between a and b.
func HaversineMeters(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
