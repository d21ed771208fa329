package services

import (
	"fmt"
	"itinerary-planner-service/internal/domain"
	"math"
)

// NoEnd lets the tour finish at whichever stop is cheapest.
const NoEnd = -1

// Changes smaller than this (meters or seconds) are float noise, not moves.
const improvementEpsilon = 1e-6

// Optimizer orders the stops of one planning run.
//
// Construction is greedy nearest neighbor, improvement is best-improvement
// 2-opt over an open path. Both use the same CostModel so a fixed end and a
// free end go through identical tie-breaking. No randomness is involved:
// identical inputs produce identical tours.
type Optimizer struct {
	cost CostModel
}

func NewOptimizer(cost CostModel) *Optimizer {
	return &Optimizer{cost: cost}
}

// Optimize returns a visiting order over all stops of m that starts at start
// and, unless end is NoEnd, finishes at end.
func (o *Optimizer) Optimize(m *domain.Matrix, start, end int) (domain.Tour, error) {
	if err := o.validate(m, start, end); err != nil {
		return nil, err
	}

	initial := o.NearestNeighbor(m, start, end)
	improved := o.TwoOpt(m, initial, end)

	// Under a non-zero threshold the preference is not transitive, so the
	// search may drift; never hand back something worse than the construction.
	if o.cost.Less(initial.Totals(m), improved.Totals(m)) {
		return initial, nil
	}
	return improved, nil
}

func (o *Optimizer) validate(m *domain.Matrix, start, end int) error {
	if m == nil {
		return domain.InvalidInput("matrix", "must be non-nil")
	}

	n := m.Size()
	if n < domain.MinStops || n > domain.MaxStops {
		return domain.InvalidInput("stops", "need between %d and %d stops, got %d", domain.MinStops, domain.MaxStops, n)
	}
	if start < 0 || start >= n {
		return domain.InvalidInput("start", "index %d out of range [0, %d)", start, n)
	}
	if end != NoEnd {
		if end < 0 || end >= n {
			return domain.InvalidInput("end", "index %d out of range [0, %d)", end, n)
		}
		if end == start {
			return domain.InvalidInput("end", "must differ from start (%d)", start)
		}
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("optimize: %w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// NearestNeighbor builds a tour by always moving to the cheapest unvisited
// stop. A fixed end is held back until it is the only stop left; remaining
// ties go to the lowest index.
func (o *Optimizer) NearestNeighbor(m *domain.Matrix, start, end int) domain.Tour {
	n := m.Size()
	visited := make([]bool, n)
	tour := make(domain.Tour, 0, n)

	tour = append(tour, start)
	visited[start] = true
	current := start

	for len(tour) < n {
		best := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if j == end && len(tour) < n-1 {
				continue
			}
			if best == -1 || o.cost.Less(m.At(current, j), m.At(current, best)) {
				best = j
			}
		}

		tour = append(tour, best)
		visited[best] = true
		current = best
	}

	return tour
}

// TwoOpt improves tour by segment reversals until a pass finds no improving
// move or n*n passes have run. Position 0 is never moved, and neither is the
// last position when end is fixed.
func (o *Optimizer) TwoOpt(m *domain.Matrix, tour domain.Tour, end int) domain.Tour {
	cur := tour.Clone()
	n := len(cur)

	last := n - 1
	if end != NoEnd {
		last = n - 2
	}
	if last < 2 {
		return cur
	}

	total := cur.Totals(m)
	maxPasses := n * n

	for pass := 0; pass < maxPasses; pass++ {
		bestI, bestJ := -1, -1
		var bestTotal domain.Leg

		for i := 1; i < last; i++ {
			for j := i + 1; j <= last; j++ {
				candidate := o.reversedTotal(m, cur, total, i, j)
				if !o.cost.Less(candidate, total) {
					continue
				}
				if bestI == -1 || o.cost.Less(candidate, bestTotal) {
					bestI, bestJ, bestTotal = i, j, candidate
				}
			}
		}

		if bestI == -1 {
			break
		}

		reverse(cur, bestI, bestJ)
		total = cur.Totals(m)
	}

	return cur
}

// reversedTotal returns the tour totals after reversing cur[i..j], summing
// only the legs that change: the entry leg, the reversed interior and the
// exit leg (absent when j is the final position).
func (o *Optimizer) reversedTotal(m *domain.Matrix, cur domain.Tour, total domain.Leg, i, j int) domain.Leg {
	hi := j + 1
	if hi > len(cur)-1 {
		hi = len(cur) - 1
	}

	var before, after domain.Leg
	for k := i - 1; k < hi; k++ {
		addLeg(&before, m.At(cur[k], cur[k+1]))
	}

	prev := cur[i-1]
	for k := j; k >= i; k-- {
		addLeg(&after, m.At(prev, cur[k]))
		prev = cur[k]
	}
	if j+1 < len(cur) {
		addLeg(&after, m.At(prev, cur[j+1]))
	}

	return domain.Leg{
		DistanceMeters:  total.DistanceMeters + snap(after.DistanceMeters-before.DistanceMeters),
		DurationSeconds: total.DurationSeconds + snap(after.DurationSeconds-before.DurationSeconds),
	}
}

func addLeg(acc *domain.Leg, l domain.Leg) {
	acc.DistanceMeters += l.DistanceMeters
	acc.DurationSeconds += l.DurationSeconds
}

// snap drops float noise from a segment delta. Summing only the changed
// legs rounds differently from re-summing the whole tour, so a delta below
// improvementEpsilon is treated as no change: with threshold 0 such a move is
// then decided by the other metric. A move whose true change is that small is
// accepted or rejected as a tie; Optimize still never returns a tour the cost
// model ranks below the nearest-neighbor construction.
func snap(delta float64) float64 {
	if math.Abs(delta) < improvementEpsilon {
		return 0
	}
	return delta
}

func reverse(t domain.Tour, i, j int) {
	for i < j {
		t[i], t[j] = t[j], t[i]
		i++
		j--
	}
}
