package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinStops = 2
	MaxStops = 20
)

// Role of a stop inside the tour.
type Role string

const (
	RoleIntermediate Role = "intermediate"
	RoleStart        Role = "start"
	RoleEnd          Role = "end"
)

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("parse clock %q: bad hour", s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("parse clock %q: bad minute", s)
	}
	return ClockTime(hh*60 + mm), nil
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60) }

// On returns the instant of c on the calendar day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, int(c)/60, int(c)%60, 0, 0, t.Location())
}

// Represents the interval during which a stop accepts visitors.
// Close before Open means the window wraps past midnight.
type OpeningWindow struct {
	Open  ClockTime
	Close ClockTime
}

// ParseOpeningWindow returns nil (always open) when either bound is blank
// or malformed, or when both bounds are equal.
func ParseOpeningWindow(open, close string) *OpeningWindow {
	if strings.TrimSpace(open) == "" || strings.TrimSpace(close) == "" {
		return nil
	}
	o, err := ParseClock(open)
	if err != nil {
		return nil
	}
	c, err := ParseClock(close)
	if err != nil {
		return nil
	}
	if o == c {
		return nil
	}
	return &OpeningWindow{Open: o, Close: c}
}

// Overnight reports whether the window spans midnight.
func (w OpeningWindow) Overnight() bool { return w.Close < w.Open }

func (w OpeningWindow) String() string { return w.Open.String() + "-" + w.Close.String() }

// Represents a single location of the itinerary.
// Index is the position in the request and in the distance matrix.
type Stop struct {
	Index   int
	Name    string
	Address string
	Coord   Coordinates
	Stay    time.Duration
	Window  *OpeningWindow
	Role    Role
}

// Label is the human-readable name used in schedules and messages.
func (s Stop) Label() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	if strings.TrimSpace(s.Address) != "" {
		return s.Address
	}
	return fmt.Sprintf("Stop %d", s.Index+1)
}

// Endpoints validates the role flags of stops and returns the start index and
// the end index (-1 when the tour may end anywhere).
func Endpoints(stops []Stop) (start int, end int, err error) {
	if len(stops) < MinStops || len(stops) > MaxStops {
		return 0, 0, InvalidInput("stops", "need between %d and %d stops, got %d", MinStops, MaxStops, len(stops))
	}

	start, end = -1, -1
	for i, s := range stops {
		if s.Stay < 0 {
			return 0, 0, InvalidInput(fmt.Sprintf("stops[%d].stay", i), "must be non-negative")
		}
		switch s.Role {
		case RoleStart:
			if start != -1 {
				return 0, 0, InvalidInput("stops", "more than one start stop (%d and %d)", start, i)
			}
			start = i
		case RoleEnd:
			if end != -1 {
				return 0, 0, InvalidInput("stops", "more than one end stop (%d and %d)", end, i)
			}
			end = i
		case RoleIntermediate, "":
		default:
			return 0, 0, InvalidInput(fmt.Sprintf("stops[%d].role", i), "unknown role %q", s.Role)
		}
	}

	if start == -1 {
		return 0, 0, InvalidInput("stops", "exactly one start stop is required")
	}
	return start, end, nil
}
