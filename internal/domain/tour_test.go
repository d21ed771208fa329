package domain

import (
	"errors"
	"testing"
)

func TestTourValidate(t *testing.T) {
	if err := (Tour{2, 0, 1, 3}).Validate(4, 2, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Tour{2, 0, 1, 3}).Validate(4, 2, -1); err != nil {
		t.Fatalf("free end: unexpected error: %v", err)
	}

	bad := []struct {
		name       string
		tour       Tour
		start, end int
	}{
		{"short", Tour{0, 1}, 0, -1},
		{"duplicate", Tour{0, 1, 1}, 0, -1},
		{"out of range", Tour{0, 1, 5}, 0, -1},
		{"wrong start", Tour{1, 0, 2}, 0, -1},
		{"wrong end", Tour{0, 2, 1}, 0, 2},
	}
	for _, tc := range bad {
		if err := tc.tour.Validate(3, tc.start, tc.end); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestTourTotalsAndLegs(t *testing.T) {
	m, err := MatrixFromRows(
		[][]float64{{0, 100, 300}, {100, 0, 50}, {300, 50, 0}},
		[][]float64{{0, 10, 30}, {10, 0, 5}, {30, 5, 0}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tour := Tour{0, 1, 2}
	total := tour.Totals(m)
	if total.DistanceMeters != 150 || total.DurationSeconds != 15 {
		t.Fatalf("totals = %+v", total)
	}

	legs := tour.LegDistances(m)
	if len(legs) != 2 || legs[0] != 100 || legs[1] != 50 {
		t.Fatalf("legs = %v", legs)
	}
	if got := (Tour{0}).LegDistances(m); len(got) != 0 {
		t.Fatalf("single stop legs = %v", got)
	}

	c := tour.Clone()
	c[1] = 2
	if tour[1] != 1 {
		t.Fatalf("Clone shares storage")
	}
}

func TestMatrixFromRowsRejects(t *testing.T) {
	if _, err := MatrixFromRows([][]float64{{0, 1}}, [][]float64{{0, 1}}); err == nil {
		t.Fatalf("expected ragged rows to fail")
	}
	if _, err := MatrixFromRows([][]float64{{0, -1}, {1, 0}}, [][]float64{{0, 1}, {1, 0}}); err == nil {
		t.Fatalf("expected negative distance to fail")
	}
}

func TestParseTransportMode(t *testing.T) {
	cases := map[string]TransportMode{
		"":                 ModeWalk,
		"Walk":             ModeWalk,
		"drive":            ModeDriveWithTolls,
		"drive-no-tolls":   ModeDriveNoTolls,
		"public_transport": ModePublicTransport,
		"transit":          ModePublicTransport,
	}
	for in, want := range cases {
		got, err := ParseTransportMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseTransportMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseTransportMode("teleport"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := TransportMode("bike").Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if ModePublicTransport.RoutingMode() != ModeWalk {
		t.Fatalf("public transport should route on foot")
	}
	if !ModeDriveWithTolls.UsesTolls() || ModeDriveNoTolls.UsesTolls() {
		t.Fatalf("only drive-with-tolls uses tolls")
	}
	if !ModeDriveNoTolls.Driving() || ModeWalk.Driving() {
		t.Fatalf("unexpected Driving()")
	}
}
