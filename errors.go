package evtools

import (
	"errors"
	"fmt"
)

var (
	// ErrCardinality is the sentinel under every CardinalityError.
	ErrCardinality = errors.New("evtools: unexpected number of matching logs")

	// ErrMissingField is the sentinel under every MissingFieldError.
	ErrMissingField = errors.New("evtools: decoded value missing declared field")

	// ErrFieldMismatch is the sentinel under every FieldMismatchError.
	ErrFieldMismatch = errors.New("evtools: decoded field does not match expectation")
)

// CardinalityError reports that ExpectOne found zero or more than one
// matching log.
type CardinalityError struct {
	Event string
	Want  int
	Got   int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("evtools: %s: expected %d, found %d", e.Event, e.Want, e.Got)
}

func (e *CardinalityError) Unwrap() error { return ErrCardinality }

// MissingFieldError reports a decoded value lacking a parameter the
// signature declares.
type MissingFieldError struct {
	Event string
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	name := e.Field
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("evtools: %s: decoded value missing declared field %s", e.Event, name)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// FieldMismatchError reports a decoded field that does not equal the
// caller's expected value.
type FieldMismatchError struct {
	Event    string
	Field    string
	Index    int
	Expected interface{}
	Actual   interface{}
}

func (e *FieldMismatchError) Error() string {
	name := e.Field
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("evtools: %s: field %s: expected %v, got %v", e.Event, name, e.Expected, e.Actual)
}

func (e *FieldMismatchError) Unwrap() error { return ErrFieldMismatch }
