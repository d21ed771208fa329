package domain

import "time"

// Warning flags a schedule entry whose arrival falls outside the opening window.
type Warning string

const (
	WarningNone  Warning = ""
	WarningEarly Warning = "early-arrival"
	WarningLate  Warning = "late-arrival"
)

// Represents the timed visit of one stop.
// Arrival is the effective arrival (after any wait for opening time);
// Departure is always Arrival + the stop's stay.
type ScheduleEntry struct {
	StopIndex     int
	Arrival       time.Time
	Departure     time.Time
	Wait          time.Duration
	TravelSeconds float64
	Warning       Warning
}

// HasWarning reports whether the entry must be surfaced to the user.
func (e ScheduleEntry) HasWarning() bool { return e.Warning != WarningNone }
