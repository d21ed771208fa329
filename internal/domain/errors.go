package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks request-level validation failures. No plan is produced.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGeocodingFailed marks an address that could not be resolved. No plan is produced.
	ErrGeocodingFailed = errors.New("geocoding failed")
	// ErrRoutingUnavailable is recovered locally by the fallback estimator.
	ErrRoutingUnavailable = errors.New("routing unavailable")
	// ErrDeliveryFailed is reported but never invalidates a computed plan.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// InputError describes which field of a planning request is invalid.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// InvalidInput builds an *InputError for field.
func InvalidInput(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// GeocodingError reports the stop whose address could not be resolved.
type GeocodingError struct {
	StopIndex int
	Address   string
	Err       error
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocoding failed: stop %d %q: %v", e.StopIndex, e.Address, e.Err)
	}
	return fmt.Sprintf("geocoding failed: stop %d %q", e.StopIndex, e.Address)
}

func (e *GeocodingError) Unwrap() []error { return []error{ErrGeocodingFailed, e.Err} }
