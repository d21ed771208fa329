package distance

import (
	"context"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"sync/atomic"
)

type MockPair struct {
	From, To string
	Meters   float64
	Seconds  float64
}

// MockMatrixProvider serves a fixed table of labelled points. Coordinates are
// matched to labels by their Key; a pair listed in one direction only is used
// for both.
type MockMatrixProvider struct {
	labels map[string]string
	m      map[string]domain.Leg
	Err    error
	calls  atomic.Int64
}

func NewMockMatrixProvider(points map[string]domain.Coordinates, pairs []MockPair) *MockMatrixProvider {
	labels := make(map[string]string, len(points))
	for label, c := range points {
		labels[c.Key()] = label
	}
	m := make(map[string]domain.Leg, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = domain.Leg{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockMatrixProvider{labels: labels, m: m}
}

// Calls returns how many times GetMatrix was invoked.
func (p *MockMatrixProvider) Calls() int { return int(p.calls.Load()) }

func (p *MockMatrixProvider) GetMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
) (*domain.Matrix, error) {
	p.calls.Add(1)
	if p.Err != nil {
		return nil, p.Err
	}

	names := make([]string, len(coords))
	for i, c := range coords {
		label, ok := p.labels[c.Key()]
		if !ok {
			return nil, fmt.Errorf("unknown point %s", c.Key())
		}
		names[i] = label
	}

	m := domain.NewMatrix(len(coords))
	for i := range names {
		for j := range names {
			if i == j {
				continue
			}
			leg, ok := p.m[names[i]+"|"+names[j]]
			if !ok {
				leg, ok = p.m[names[j]+"|"+names[i]]
			}
			if !ok {
				return nil, fmt.Errorf("missing pair %q -> %q", names[i], names[j])
			}
			m.Set(i, j, leg)
		}
	}
	return m, nil
}
