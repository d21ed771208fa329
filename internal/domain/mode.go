package domain

import (
	"fmt"
	"strings"
)

// TransportMode selects the routing profile for every leg of a plan.
type TransportMode string

const (
	ModeWalk            TransportMode = "walk"
	ModeDriveWithTolls  TransportMode = "drive-with-tolls"
	ModeDriveNoTolls    TransportMode = "drive-no-tolls"
	ModePublicTransport TransportMode = "public-transport"
)

// ParseTransportMode accepts the canonical names plus a few short aliases.
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "walk", "walking", "foot":
		return ModeWalk, nil
	case "drive", "drive-with-tolls", "drive_with_tolls", "car":
		return ModeDriveWithTolls, nil
	case "drive-no-tolls", "drive_no_tolls":
		return ModeDriveNoTolls, nil
	case "public-transport", "public_transport", "transit":
		return ModePublicTransport, nil
	}
	return "", InvalidInput("mode", "unknown transport mode %q", s)
}

// RoutingMode is the mode actually sent to the routing provider.
// Public transport has no routing support, so it is routed on foot.
func (m TransportMode) RoutingMode() TransportMode {
	if m == ModePublicTransport {
		return ModeWalk
	}
	return m
}

// Driving reports whether the mode uses the road network.
func (m TransportMode) Driving() bool {
	return m == ModeDriveWithTolls || m == ModeDriveNoTolls
}

// UsesTolls reports whether toll roads may be part of the route.
func (m TransportMode) UsesTolls() bool { return m == ModeDriveWithTolls }

func (m TransportMode) String() string { return string(m) }

// Validate rejects modes that were not produced by ParseTransportMode.
func (m TransportMode) Validate() error {
	switch m {
	case ModeWalk, ModeDriveWithTolls, ModeDriveNoTolls, ModePublicTransport:
		return nil
	}
	return fmt.Errorf("transport mode %q: %w", string(m), ErrInvalidInput)
}
