// Package filter builds typed event filters from partial value
// specifications and applies their pre-decode topic constraints.
package filter

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/windranger-io/ethers-contract-tools/event"
)

// DecodeFunc decodes a raw log into a structured event value.
type DecodeFunc func(*types.Log) (*event.Decoded, error)

// Filter describes one expected event occurrence: positional topic
// constraints checked before decoding, optional value constraints checked
// after decoding, and the decode capability itself.
type Filter struct {
	// Address restricts matches to logs emitted by this contract.
	// nil matches any emitter.
	Address *common.Address

	// Topics are the positional topic constraints. Slot 0 carries the
	// signature tag; later slots correspond to indexed parameters in
	// declared order. A nil entry is a wildcard.
	Topics []*common.Hash

	// DataValues are the post-decode value constraints, one entry per
	// declared parameter with nil at indexed positions and at wildcard
	// positions. A nil slice means no post-decode check at all.
	DataValues []interface{}

	// Decode converts a matching log into its structured value.
	Decode DecodeFunc
}

// EventID returns the signature tag the filter expects at topic 0, or the
// zero hash if slot 0 is a wildcard.
func (f Filter) EventID() common.Hash {
	if len(f.Topics) == 0 || f.Topics[0] == nil {
		return common.Hash{}
	}
	return *f.Topics[0]
}

// WithAddress returns a copy of the filter restricted to the given emitter.
func (f Filter) WithAddress(addr common.Address) Filter {
	f.Address = &addr
	return f
}

// MatchesTopics reports whether the log satisfies the filter's pre-decode
// constraints: the emitter address when set, and every non-wildcard topic
// entry. A log with fewer topics than the filter has constraints never
// matches; this rejects signatures with fewer indexed fields than expected.
func (f Filter) MatchesTopics(lg *types.Log) bool {
	if f.Address != nil && *f.Address != lg.Address {
		return false
	}
	if len(f.Topics) > len(lg.Topics) {
		return false
	}
	for i, want := range f.Topics {
		if want != nil && *want != lg.Topics[i] {
			return false
		}
	}
	return true
}

// MatchesSignature reports whether the log carries the filter's signature
// tag and emitter address, ignoring all parameter constraints. This is the
// relaxed gate used for unordered bulk collection.
func (f Filter) MatchesSignature(lg *types.Log) bool {
	if f.Address != nil && *f.Address != lg.Address {
		return false
	}
	if len(f.Topics) == 0 || f.Topics[0] == nil {
		return true
	}
	return len(lg.Topics) > 0 && lg.Topics[0] == *f.Topics[0]
}
