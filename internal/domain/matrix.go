package domain

import (
	"fmt"
	"math"
)

// Leg is the travel distance and duration of one ordered pair of stops.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Source records where a Matrix came from.
type Source string

const (
	SourceProvider  Source = "provider"
	SourceEstimated Source = "estimated"
)

// Matrix is the square table of legs between all stops of one planning run.
// It may be asymmetric; legs[i][j] is the leg from i to j.
type Matrix struct {
	legs   [][]Leg
	Source Source
}

// NewMatrix returns an n×n matrix with zero legs.
func NewMatrix(n int) *Matrix {
	legs := make([][]Leg, n)
	for i := range legs {
		legs[i] = make([]Leg, n)
	}
	return &Matrix{legs: legs, Source: SourceProvider}
}

// MatrixFromRows builds a matrix from parallel distance/duration rows.
func MatrixFromRows(distances, durations [][]float64) (*Matrix, error) {
	n := len(distances)
	if len(durations) != n {
		return nil, fmt.Errorf("matrix: %d distance rows but %d duration rows", n, len(durations))
	}

	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		if len(distances[i]) != n || len(durations[i]) != n {
			return nil, fmt.Errorf("matrix: row %d is not of length %d", i, n)
		}
		for j := 0; j < n; j++ {
			m.legs[i][j] = Leg{DistanceMeters: distances[i][j], DurationSeconds: durations[i][j]}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matrix) Size() int { return len(m.legs) }

// At returns the leg from i to j.
func (m *Matrix) At(i, j int) Leg { return m.legs[i][j] }

// Set stores the leg from i to j.
func (m *Matrix) Set(i, j int, l Leg) { m.legs[i][j] = l }

// Estimated reports whether the fallback estimator produced the legs.
func (m *Matrix) Estimated() bool { return m.Source == SourceEstimated }

// Validate checks that every off-diagonal leg is finite and non-negative.
func (m *Matrix) Validate() error {
	n := len(m.legs)
	for i := 0; i < n; i++ {
		if len(m.legs[i]) != n {
			return fmt.Errorf("matrix: row %d has length %d, want %d", i, len(m.legs[i]), n)
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			l := m.legs[i][j]
			if !finiteNonNegative(l.DistanceMeters) || !finiteNonNegative(l.DurationSeconds) {
				return fmt.Errorf("matrix: leg %d->%d has invalid metrics (%v m, %v s)", i, j, l.DistanceMeters, l.DurationSeconds)
			}
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
