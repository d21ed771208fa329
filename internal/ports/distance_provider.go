package ports

import (
	"context"
	"itinerary-planner-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving the full travel matrix between a set of locations.
type MatrixProvider interface {
	// Return an N×N matrix for coords in the given mode. A returned error means
	// the whole matrix is unusable; callers must not use partial results.
	GetMatrix(ctx context.Context, coords []domain.Coordinates, mode domain.TransportMode) (*domain.Matrix, error)
}

// Offline estimator used when the MatrixProvider fails.
type MatrixEstimator interface {
	Estimate(coords []domain.Coordinates, mode domain.TransportMode) *domain.Matrix
}
