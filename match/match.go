// Package match implements ordered multi-filter matching over the log
// sequence of a transaction receipt.
//
// Given a flat, time-ordered log sequence and a sequence of filters, Ordered
// finds a non-overlapping, strictly position-increasing assignment of
// filters to logs, decoding each assigned log. The input sequence is never
// reordered; the matcher only selects from it.
package match

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/windranger-io/ethers-contract-tools/event"
	"github.com/windranger-io/ethers-contract-tools/filter"
	"github.com/windranger-io/ethers-contract-tools/values"
)

// Result holds one decoded match per filter, in filter order.
type Result struct {
	// Positions are the matched sequence positions, strictly increasing.
	Positions []int

	// Addresses are the emitting contract addresses, one per filter.
	Addresses []common.Address

	// Events are the decoded values, one per filter.
	Events []*event.Decoded
}

// matchState tracks assignment progress within a single Ordered call.
type matchState struct {
	consumed map[int]struct{}
	last     int
}

// Ordered matches filters against logs in filter order and returns one
// decoded result per filter. Matched positions are consumed exactly once and
// strictly increase across filters regardless of forwardOnly.
//
// When forwardOnly is true, each search starts strictly after the previous
// match, permanently discarding the prefix. When false, each search restarts
// at the front of the sequence: earlier still-unconsumed logs are eligible
// candidates, but a candidate at or before the previous match is rejected.
// Such a candidate is only reported as an OrderViolationError after the scan
// confirms no later eligible log exists, so a later valid occurrence is
// always preferred over an earlier out-of-order one.
//
// On any failure no partial results are returned.
func Ordered(logs []*types.Log, filters []filter.Filter, forwardOnly bool) (*Result, error) {
	state := matchState{
		consumed: make(map[int]struct{}, len(filters)),
		last:     -1,
	}
	res := &Result{
		Positions: make([]int, 0, len(filters)),
		Addresses: make([]common.Address, 0, len(filters)),
		Events:    make([]*event.Decoded, 0, len(filters)),
	}

	for i, f := range filters {
		pos, decoded, err := matchOne(logs, f, i, &state, forwardOnly)
		if err != nil {
			return nil, err
		}
		state.consumed[pos] = struct{}{}
		state.last = pos
		res.Positions = append(res.Positions, pos)
		res.Addresses = append(res.Addresses, logs[pos].Address)
		res.Events = append(res.Events, decoded)
	}

	if len(res.Events) != len(filters) {
		return nil, &IncompleteMatchError{Want: len(filters), Got: len(res.Events)}
	}
	return res, nil
}

// matchOne scans for the first order-valid log satisfying the filter.
func matchOne(logs []*types.Log, f filter.Filter, filterIndex int, state *matchState, forwardOnly bool) (int, *event.Decoded, error) {
	start := 0
	if forwardOnly {
		start = state.last + 1
	}

	outOfOrder := -1
	for j := start; j < len(logs); j++ {
		if _, taken := state.consumed[j]; taken {
			continue
		}
		lg := logs[j]
		if !f.MatchesTopics(lg) {
			continue
		}
		decoded, err := f.Decode(lg)
		if err != nil {
			return 0, nil, fmt.Errorf("match: filter %d: decode log at position %d: %w", filterIndex, j, err)
		}
		if f.DataValues != nil && !values.Match(f.DataValues, decoded.Values()) {
			continue
		}
		if j <= state.last {
			// Fully eligible, but not past the previous match. Remember it
			// and keep scanning for a later occurrence.
			if outOfOrder < 0 {
				outOfOrder = j
			}
			continue
		}
		return j, decoded, nil
	}

	if outOfOrder >= 0 {
		return 0, nil, &OrderViolationError{
			FilterIndex: filterIndex,
			Position:    outOfOrder,
			Previous:    state.last,
		}
	}
	return 0, nil, &NotFoundError{FilterIndex: filterIndex, EventID: f.EventID()}
}
