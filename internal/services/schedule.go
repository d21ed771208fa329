package services

import (
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"math"
	"time"
)

// BuildSchedule walks tour once and times every visit.
//
// The start stop is reached at departAt and left after its stay; its window
// is not checked because departAt is the traveller's own choice. Each following stop is reached after
// the matrix travel time from the previous departure; arrivals before an
// opening window wait for it (early-arrival), arrivals after it keep their
// time and are flagged (late-arrival). Departure is always arrival + stay.
// A stop without a usable window is always open.
func BuildSchedule(
	tour domain.Tour,
	stops []domain.Stop,
	departAt time.Time,
	m *domain.Matrix,
) ([]domain.ScheduleEntry, error) {
	if m == nil {
		return nil, errors.New("build schedule: matrix must be non-nil")
	}
	if len(stops) != m.Size() {
		return nil, fmt.Errorf("build schedule: %d stops but matrix of size %d", len(stops), m.Size())
	}
	if len(tour) == 0 {
		return []domain.ScheduleEntry{}, nil
	}
	if err := tour.Validate(len(stops), tour[0], NoEnd); err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	leave := departAt.Add(stops[tour[0]].Stay)

	entries := make([]domain.ScheduleEntry, 0, len(tour))
	entries = append(entries, domain.ScheduleEntry{
		StopIndex: tour[0],
		Arrival:   departAt,
		Departure: leave,
	})

	clock := leave
	prev := tour[0]
	for _, s := range tour[1:] {
		travel := m.At(prev, s).DurationSeconds
		candidate := clock.Add(seconds(travel))

		arrival, wait, warning := applyWindow(stops[s].Window, candidate)
		departure := arrival.Add(stops[s].Stay)

		entries = append(entries, domain.ScheduleEntry{
			StopIndex:     s,
			Arrival:       arrival,
			Departure:     departure,
			Wait:          wait,
			TravelSeconds: travel,
			Warning:       warning,
		})

		clock = departure
		prev = s
	}

	return entries, nil
}

// applyWindow resolves a candidate arrival against w on the candidate's
// calendar day. Overnight windows are open from Open until midnight and from
// midnight until Close; an arrival in the daytime gap waits for Open.
func applyWindow(w *domain.OpeningWindow, candidate time.Time) (time.Time, time.Duration, domain.Warning) {
	if w == nil {
		return candidate, 0, domain.WarningNone
	}

	open := w.Open.On(candidate)
	closeAt := w.Close.On(candidate)

	if !w.Overnight() {
		switch {
		case candidate.Before(open):
			return open, open.Sub(candidate), domain.WarningEarly
		case candidate.After(closeAt):
			return candidate, 0, domain.WarningLate
		}
		return candidate, 0, domain.WarningNone
	}

	if !candidate.Before(open) || !candidate.After(closeAt) {
		return candidate, 0, domain.WarningNone
	}
	return open, open.Sub(candidate), domain.WarningEarly
}

// seconds converts matrix seconds to a Duration rounded to whole seconds.
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s)) * time.Second
}
