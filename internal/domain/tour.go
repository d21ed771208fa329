package domain

import "fmt"

// Tour is a visiting order over stop indices.
type Tour []int

// Validate checks that t is a permutation of 0..n-1 starting at start and,
// when end >= 0, ending at end.
func (t Tour) Validate(n, start, end int) error {
	if len(t) != n {
		return fmt.Errorf("tour: length %d, want %d", len(t), n)
	}
	seen := make([]bool, n)
	for pos, idx := range t {
		if idx < 0 || idx >= n {
			return fmt.Errorf("tour: position %d holds out-of-range index %d", pos, idx)
		}
		if seen[idx] {
			return fmt.Errorf("tour: index %d visited twice", idx)
		}
		seen[idx] = true
	}
	if n > 0 && t[0] != start {
		return fmt.Errorf("tour: starts at %d, want %d", t[0], start)
	}
	if end >= 0 && n > 0 && t[n-1] != end {
		return fmt.Errorf("tour: ends at %d, want %d", t[n-1], end)
	}
	return nil
}

// Totals sums the legs along the tour.
func (t Tour) Totals(m *Matrix) Leg {
	var total Leg
	for i := 0; i+1 < len(t); i++ {
		l := m.At(t[i], t[i+1])
		total.DistanceMeters += l.DistanceMeters
		total.DurationSeconds += l.DurationSeconds
	}
	return total
}

// LegDistances returns the distance of each consecutive leg of the tour.
func (t Tour) LegDistances(m *Matrix) []float64 {
	if len(t) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(t)-1)
	for i := 0; i+1 < len(t); i++ {
		out = append(out, m.At(t[i], t[i+1]).DistanceMeters)
	}
	return out
}

// Clone returns an independent copy.
func (t Tour) Clone() Tour { return append(Tour(nil), t...) }
