package services

import (
	"errors"
	"itinerary-planner-service/internal/domain"
	"math"
	"math/rand"
	"slices"
	"testing"
)

// lineMatrix places stops on a line at xs (meters); duration equals distance.
func lineMatrix(t *testing.T, xs []float64) *domain.Matrix {
	t.Helper()

	m := domain.NewMatrix(len(xs))
	for i := range xs {
		for j := range xs {
			if i == j {
				continue
			}
			d := math.Abs(xs[i] - xs[j])
			m.Set(i, j, domain.Leg{DistanceMeters: d, DurationSeconds: d})
		}
	}
	return m
}

// randomMatrix builds an asymmetric matrix with whole-number metrics so that
// tour sums are exact.
func randomMatrix(rng *rand.Rand, n int) *domain.Matrix {
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = rng.Float64() * 10000
		ys[i] = rng.Float64() * 10000
	}

	m := domain.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := math.Hypot(xs[i]-xs[j], ys[i]-ys[j])
			speed := 8 + rng.Float64()*6
			m.Set(i, j, domain.Leg{
				DistanceMeters:  math.Round(d * (1 + rng.Float64()*0.2)),
				DurationSeconds: math.Round(d / speed),
			})
		}
	}
	return m
}

func mustOptimizer(t *testing.T, threshold float64) *Optimizer {
	t.Helper()

	cost, err := NewCostModel(threshold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewOptimizer(cost)
}

func TestOptimizeImprovesNearestNeighbor(t *testing.T) {
	m := lineMatrix(t, []float64{0, 1, -1.5, 5})
	o := mustOptimizer(t, 0)

	nn := o.NearestNeighbor(m, 0, NoEnd)
	if !slices.Equal(nn, domain.Tour{0, 1, 2, 3}) {
		t.Fatalf("nearest neighbor = %v, want [0 1 2 3]", nn)
	}

	tour, err := o.Optimize(m, 0, NoEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{0, 2, 1, 3}) {
		t.Fatalf("tour = %v, want [0 2 1 3]", tour)
	}
	if got := tour.Totals(m).DistanceMeters; got != 8 {
		t.Fatalf("distance = %v, want 8", got)
	}
}

func TestOptimizeKeepsFixedEnd(t *testing.T) {
	m := lineMatrix(t, []float64{0, 1, -1.5, 5})
	o := mustOptimizer(t, 0)

	tour, err := o.Optimize(m, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{0, 2, 3, 1}) {
		t.Fatalf("tour = %v, want [0 2 3 1]", tour)
	}
}

func TestOptimizeTwoStops(t *testing.T) {
	m := lineMatrix(t, []float64{0, 10})
	o := mustOptimizer(t, 0)

	tour, err := o.Optimize(m, 1, NoEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{1, 0}) {
		t.Fatalf("tour = %v, want [1 0]", tour)
	}

	tour, err = o.Optimize(m, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{0, 1}) {
		t.Fatalf("tour = %v, want [0 1]", tour)
	}
}

func TestNearestNeighborTiesGoToLowestIndex(t *testing.T) {
	m := domain.NewMatrix(5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i != j {
				m.Set(i, j, domain.Leg{DistanceMeters: 100, DurationSeconds: 60})
			}
		}
	}
	o := mustOptimizer(t, 0)

	tour, err := o.Optimize(m, 2, NoEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{2, 0, 1, 3, 4}) {
		t.Fatalf("tour = %v, want [2 0 1 3 4]", tour)
	}

	tour, err = o.Optimize(m, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tour, domain.Tour{2, 1, 3, 4, 0}) {
		t.Fatalf("tour = %v, want [2 1 3 4 0]", tour)
	}
}

func TestOptimizeRandomInstances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, threshold := range []float64{0, 0.1, 0.3} {
		o := mustOptimizer(t, threshold)

		for n := domain.MinStops; n <= domain.MaxStops; n++ {
			m := randomMatrix(rng, n)
			start := rng.Intn(n)
			end := NoEnd
			if n > 2 && rng.Intn(2) == 0 {
				end = (start + 1 + rng.Intn(n-1)) % n
			}

			tour, err := o.Optimize(m, start, end)
			if err != nil {
				t.Fatalf("n=%d: unexpected error: %v", n, err)
			}
			if err := tour.Validate(n, start, end); err != nil {
				t.Fatalf("n=%d threshold=%v: %v (tour %v)", n, threshold, err, tour)
			}

			nn := o.NearestNeighbor(m, start, end)
			if err := nn.Validate(n, start, end); err != nil {
				t.Fatalf("n=%d: nearest neighbor: %v", n, err)
			}
			if o.cost.Less(nn.Totals(m), tour.Totals(m)) {
				t.Fatalf("n=%d threshold=%v: optimized %v worse than nearest neighbor %v",
					n, threshold, tour.Totals(m), nn.Totals(m))
			}

			again, err := o.Optimize(m, start, end)
			if err != nil {
				t.Fatalf("n=%d: unexpected error: %v", n, err)
			}
			if !slices.Equal(tour, again) {
				t.Fatalf("n=%d: non-deterministic result %v vs %v", n, tour, again)
			}
		}
	}
}

func TestTwoOptResultIsLocalOptimum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	o := mustOptimizer(t, 0)

	for n := 4; n <= 12; n++ {
		m := randomMatrix(rng, n)
		tour := o.TwoOpt(m, o.NearestNeighbor(m, 0, NoEnd), NoEnd)
		total := tour.Totals(m)

		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				cand := tour.Clone()
				reverse(cand, i, j)
				if o.cost.Less(cand.Totals(m), total) {
					t.Fatalf("n=%d: reversing [%d,%d] of %v still improves", n, i, j, tour)
				}
			}
		}
	}
}

func TestReversedTotalMatchesFullRecompute(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	o := mustOptimizer(t, 0)

	for n := 3; n <= 10; n++ {
		m := randomMatrix(rng, n)
		tour := o.NearestNeighbor(m, 0, NoEnd)
		total := tour.Totals(m)

		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				got := o.reversedTotal(m, tour, total, i, j)

				cand := tour.Clone()
				reverse(cand, i, j)
				want := cand.Totals(m)

				if math.Abs(got.DistanceMeters-want.DistanceMeters) > 1e-6 ||
					math.Abs(got.DurationSeconds-want.DurationSeconds) > 1e-6 {
					t.Fatalf("n=%d reverse[%d,%d]: got %+v, want %+v", n, i, j, got, want)
				}
			}
		}
	}
}

func TestOptimizeRejectsInvalidInput(t *testing.T) {
	o := mustOptimizer(t, 0)
	m := lineMatrix(t, []float64{0, 1, 2})

	tests := []struct {
		name       string
		m          *domain.Matrix
		start, end int
	}{
		{name: "nil matrix", m: nil, start: 0, end: NoEnd},
		{name: "single stop", m: lineMatrix(t, []float64{0}), start: 0, end: NoEnd},
		{name: "start out of range", m: m, start: 3, end: NoEnd},
		{name: "end out of range", m: m, start: 0, end: 5},
		{name: "end equals start", m: m, start: 1, end: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Optimize(tt.m, tt.start, tt.end)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	bad := lineMatrix(t, []float64{0, 1, 2})
	bad.Set(0, 2, domain.Leg{DistanceMeters: math.Inf(1), DurationSeconds: 1})
	if _, err := o.Optimize(bad, 0, NoEnd); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for infinite leg, got %v", err)
	}
}

func TestTwoOptTreatsFloatNoiseAsTie(t *testing.T) {
	m := domain.NewMatrix(4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				m.Set(i, j, domain.Leg{DistanceMeters: 50, DurationSeconds: 100})
			}
		}
	}
	m.Set(0, 1, domain.Leg{DistanceMeters: 10, DurationSeconds: 100})
	m.Set(1, 2, domain.Leg{DistanceMeters: 10, DurationSeconds: 100})
	m.Set(2, 3, domain.Leg{DistanceMeters: 10, DurationSeconds: 100})
	// Reversing [1..2] saves 27 m and costs a nanosecond-scale duration.
	m.Set(0, 2, domain.Leg{DistanceMeters: 1, DurationSeconds: 100 + 1e-9})
	m.Set(2, 1, domain.Leg{DistanceMeters: 1, DurationSeconds: 100})
	m.Set(1, 3, domain.Leg{DistanceMeters: 1, DurationSeconds: 100})

	got := mustOptimizer(t, 0).TwoOpt(m, domain.Tour{0, 1, 2, 3}, NoEnd)
	if !slices.Equal(got, domain.Tour{0, 2, 1, 3}) {
		t.Fatalf("tour = %v, want [0 2 1 3]", got)
	}

	if snap(1e-9) != 0 || snap(-1e-9) != 0 {
		t.Fatalf("sub-epsilon deltas must snap to zero")
	}
	if snap(1e-3) != 1e-3 {
		t.Fatalf("real deltas must pass through")
	}
}
