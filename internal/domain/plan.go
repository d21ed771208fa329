package domain

import "time"

// Represents the planned itinerary for a single request.
// A Plan is the output of the planning pipeline and is never mutated after
// construction; rendering and delivery only read it.
type Plan struct {
	ID                   string
	DepartAt             time.Time
	Mode                 TransportMode
	Threshold            float64
	Stops                []Stop
	Tour                 Tour
	Schedule             []ScheduleEntry
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	TollTotal            float64
	TotalCost            float64
	Estimated            bool
	Notes                []string
}

// Warnings returns the entries carrying a warning, in tour order.
func (p *Plan) Warnings() []ScheduleEntry {
	out := make([]ScheduleEntry, 0)
	for _, e := range p.Schedule {
		if e.HasWarning() {
			out = append(out, e)
		}
	}
	return out
}

// FinishAt is the departure time from the last stop.
func (p *Plan) FinishAt() time.Time {
	if len(p.Schedule) == 0 {
		return p.DepartAt
	}
	return p.Schedule[len(p.Schedule)-1].Departure
}
