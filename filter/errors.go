package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistent is the sentinel under every ConsistencyError.
	ErrInconsistent = errors.New("filter: positional and named values disagree")

	// ErrRange is the sentinel under every RangeError.
	ErrRange = errors.New("filter: positional index out of range")

	// ErrUnknownField is the sentinel under every UnknownFieldError.
	ErrUnknownField = errors.New("filter: unknown field")
)

// ConsistencyError reports that a positional entry and a named entry for the
// same parameter carry different values.
type ConsistencyError struct {
	Event      string
	Field      string
	Index      int
	Positional interface{}
	Named      interface{}
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("filter: %s parameter %q (position %d): positional value %v disagrees with named value %v",
		e.Event, e.Field, e.Index, e.Positional, e.Named)
}

func (e *ConsistencyError) Unwrap() error { return ErrInconsistent }

// RangeError reports a positional specification longer than the event's
// parameter list.
type RangeError struct {
	Event     string
	Index     int
	NumParams int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("filter: %s has %d parameters, positional index %d out of range",
		e.Event, e.NumParams, e.Index)
}

func (e *RangeError) Unwrap() error { return ErrRange }

// UnknownFieldError reports a named entry whose key does not correspond to
// any declared parameter.
type UnknownFieldError struct {
	Event string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("filter: %s has no parameter named %q", e.Event, e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }
