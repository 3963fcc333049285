package match

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoMatch is the sentinel under every NotFoundError.
	ErrNoMatch = errors.New("match: no eligible log")

	// ErrOrderViolation is the sentinel under every OrderViolationError.
	ErrOrderViolation = errors.New("match: log matched out of order")

	// ErrIncomplete is the sentinel under every IncompleteMatchError.
	ErrIncomplete = errors.New("match: incomplete match")
)

// NotFoundError reports that no remaining log satisfied a filter's
// constraints at all.
type NotFoundError struct {
	// FilterIndex is the position of the unsatisfied filter.
	FilterIndex int

	// EventID is the signature tag the filter expected, or the zero hash for
	// a fully wildcard filter.
	EventID common.Hash
}

func (e *NotFoundError) Error() string {
	if e.EventID == (common.Hash{}) {
		return fmt.Sprintf("match: filter %d: no eligible log", e.FilterIndex)
	}
	return fmt.Sprintf("match: filter %d (signature %s): no eligible log", e.FilterIndex, e.EventID.Hex())
}

func (e *NotFoundError) Unwrap() error { return ErrNoMatch }

// OrderViolationError reports that a log satisfied all of a filter's
// constraints but at or before the previous filter's matched position, and
// that no later eligible log existed.
type OrderViolationError struct {
	// FilterIndex is the position of the filter whose only candidates were
	// out of order.
	FilterIndex int

	// Position is the sequence position of the offending candidate.
	Position int

	// Previous is the sequence position matched by the preceding filter.
	Previous int
}

func (e *OrderViolationError) Error() string {
	return fmt.Sprintf("match: filter %d matched log at position %d, at or before previous match at position %d",
		e.FilterIndex, e.Position, e.Previous)
}

func (e *OrderViolationError) Unwrap() error { return ErrOrderViolation }

// IncompleteMatchError reports fewer results than filters after a full pass.
// It should be unreachable while NotFoundError and OrderViolationError are
// raised eagerly; it remains as a final invariant check.
type IncompleteMatchError struct {
	Want int
	Got  int
}

func (e *IncompleteMatchError) Error() string {
	return fmt.Sprintf("match: %d filters produced only %d results", e.Want, e.Got)
}

func (e *IncompleteMatchError) Unwrap() error { return ErrIncomplete }
