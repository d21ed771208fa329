package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want ClockTime
		ok   bool
	}{
		{"09:00", 540, true},
		{" 23:59 ", 23*60 + 59, true},
		{"0:05", 5, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseClock(%q): unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseClock(%q): expected error", tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if s := ClockTime(605).String(); s != "10:05" {
		t.Fatalf("String() = %q, want 10:05", s)
	}
}

func TestClockOnKeepsDayAndLocation(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	day := time.Date(2026, 3, 14, 22, 30, 0, 0, jst)

	got := ClockTime(9 * 60).On(day)
	want := time.Date(2026, 3, 14, 9, 0, 0, 0, jst)
	if !got.Equal(want) || got.Location() != jst {
		t.Fatalf("On() = %v, want %v", got, want)
	}
}

func TestParseOpeningWindow(t *testing.T) {
	w := ParseOpeningWindow("09:00", "17:30")
	if w == nil || w.Open != 540 || w.Close != 1050 || w.Overnight() {
		t.Fatalf("unexpected window %+v", w)
	}
	if w.String() != "09:00-17:30" {
		t.Fatalf("String() = %q", w.String())
	}

	night := ParseOpeningWindow("22:00", "02:00")
	if night == nil || !night.Overnight() {
		t.Fatalf("expected overnight window, got %+v", night)
	}

	for _, pair := range [][2]string{{"", "17:00"}, {"09:00", ""}, {"9am", "17:00"}, {"10:00", "10:00"}} {
		if got := ParseOpeningWindow(pair[0], pair[1]); got != nil {
			t.Fatalf("ParseOpeningWindow(%q, %q) = %+v, want always open", pair[0], pair[1], got)
		}
	}
}

func TestStopLabel(t *testing.T) {
	if got := (Stop{Name: "Senso-ji", Address: "2 Chome-3-1 Asakusa"}).Label(); got != "Senso-ji" {
		t.Fatalf("label = %q", got)
	}
	if got := (Stop{Address: "2 Chome-3-1 Asakusa"}).Label(); got != "2 Chome-3-1 Asakusa" {
		t.Fatalf("label = %q", got)
	}
	if got := (Stop{Index: 2}).Label(); got != "Stop 3" {
		t.Fatalf("label = %q", got)
	}
}

func TestEndpoints(t *testing.T) {
	stops := []Stop{{Role: RoleIntermediate}, {Role: RoleStart}, {}, {Role: RoleEnd}}
	start, end, err := Endpoints(stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 1 || end != 3 {
		t.Fatalf("endpoints = (%d, %d), want (1, 3)", start, end)
	}

	start, end, err = Endpoints([]Stop{{Role: RoleStart}, {}})
	if err != nil || start != 0 || end != -1 {
		t.Fatalf("free end: got (%d, %d, %v)", start, end, err)
	}
}

func TestEndpointsRejects(t *testing.T) {
	many := make([]Stop, MaxStops+1)
	many[0].Role = RoleStart

	cases := map[string][]Stop{
		"one stop":      {{Role: RoleStart}},
		"too many":      many,
		"no start":      {{}, {}},
		"two starts":    {{Role: RoleStart}, {Role: RoleStart}},
		"two ends":      {{Role: RoleStart}, {Role: RoleEnd}, {Role: RoleEnd}},
		"unknown role":  {{Role: RoleStart}, {Role: "depot"}},
		"negative stay": {{Role: RoleStart}, {Stay: -time.Minute}},
	}

	for name, stops := range cases {
		_, _, err := Endpoints(stops)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Fatalf("%s: expected *InputError, got %T", name, err)
		}
	}
}

func TestAddressKey(t *testing.T) {
	if got := AddressKey("  Tokyo   Station\t"); got != "tokyo station" {
		t.Fatalf("AddressKey = %q", got)
	}
	if got := AddressKey("東京駅"); got != "東京駅" {
		t.Fatalf("AddressKey = %q", got)
	}
}

func TestCoordinatesValid(t *testing.T) {
	if !(Coordinates{Lat: 35.68, Lon: 139.76}).Valid() {
		t.Fatalf("expected valid")
	}
	for _, c := range []Coordinates{{Lat: 91}, {Lon: -181}, {Lat: math.NaN()}} {
		if c.Valid() {
			t.Fatalf("expected %+v to be invalid", c)
		}
	}
	if k := (Coordinates{Lat: 35.6812, Lon: 139.7671}).Key(); k != "35.681200,139.767100" {
		t.Fatalf("Key = %q", k)
	}
}
