package services

import (
	"cmp"
	"itinerary-planner-service/internal/domain"
	"math"
)

// CostModel compares (distance, duration) pairs of legs or whole tours.
//
// Durations decide, except when they are equal or differ by less than
// Threshold of the larger one: then the shorter distance wins.
// With Threshold 0 this is duration first, distance as an exact-tie breaker.
type CostModel struct {
	Threshold float64
}

// NewCostModel validates the threshold (a fraction in [0, 1)).
func NewCostModel(threshold float64) (CostModel, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold >= 1 {
		return CostModel{}, domain.InvalidInput("threshold", "must be a fraction in [0, 1), got %v", threshold)
	}
	return CostModel{Threshold: threshold}, nil
}

// Compare returns -1 when a is preferred, 1 when b is preferred and 0 when
// neither is.
func (c CostModel) Compare(a, b domain.Leg) int {
	da, db := a.DurationSeconds, b.DurationSeconds
	if da == db || math.Abs(da-db) < c.Threshold*math.Max(da, db) {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	}
	return cmp.Compare(da, db)
}

// Less reports whether a is strictly preferred over b.
func (c CostModel) Less(a, b domain.Leg) bool { return c.Compare(a, b) < 0 }
