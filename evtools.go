// Package evtools provides deterministic, typed extraction of contract
// events from transaction receipts: single-event expectation, ordered
// multi-event matching across one or more emitters, bulk retrieval and live
// listening.
//
// Usage:
//
//	store, _ := evtools.FromABI(addr, &storageABI, "Store")
//
//	decoded, err := store.ExpectOne(receipt, filter.Named(map[string]interface{}{
//	    "value": big.NewInt(2),
//	}))
//
//	ordered, err := store.ExpectOrdered(receipt, []filter.Args{
//	    filter.Positional(big.NewInt(2)),
//	    filter.Positional(big.NewInt(3)),
//	}, false)
package evtools

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/windranger-io/ethers-contract-tools/decoder"
	"github.com/windranger-io/ethers-contract-tools/event"
	"github.com/windranger-io/ethers-contract-tools/filter"
	"github.com/windranger-io/ethers-contract-tools/match"
	"github.com/windranger-io/ethers-contract-tools/subscriber"
	"github.com/windranger-io/ethers-contract-tools/txwait"
	"github.com/windranger-io/ethers-contract-tools/values"
)

// Event is the per-(emitter, event-name) entry point for event extraction.
type Event struct {
	address common.Address
	sig     *decoder.Signature
	logger  *zap.Logger
}

// New creates an Event for a resolved signature emitted by the contract at
// address.
func New(address common.Address, sig *decoder.Signature, opts ...Option) *Event {
	e := &Event{
		address: address,
		sig:     sig,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromABI resolves name in the contract ABI and creates an Event for it.
func FromABI(address common.Address, contractABI *abi.ABI, name string, opts ...Option) (*Event, error) {
	sig, err := decoder.NewRegistry(contractABI).Resolve(name)
	if err != nil {
		return nil, err
	}
	return New(address, sig, opts...), nil
}

// FromSignature creates an Event from a human-readable Solidity event
// declaration, e.g. "Transfer(address indexed from, address indexed to, uint256 value)".
func FromSignature(address common.Address, signature string, opts ...Option) (*Event, error) {
	sig, err := decoder.ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return New(address, sig, opts...), nil
}

// Name returns the event name.
func (e *Event) Name() string {
	return e.sig.Name()
}

// Address returns the emitter the Event is bound to.
func (e *Event) Address() common.Address {
	return e.address
}

// Signature returns the resolved event signature.
func (e *Event) Signature() *decoder.Signature {
	return e.sig
}

// NewFilter builds a Filter for this event from a partial value
// specification, bound to this Event's emitter unless an override address is
// given. The result composes with the free-standing MatchOrdered entry
// points, which is how events from different emitters are matched as one
// ordered sequence.
func (e *Event) NewFilter(args filter.Args, override ...common.Address) (filter.Filter, error) {
	f, err := filter.Build(e.sig, args)
	if err != nil {
		return filter.Filter{}, err
	}
	addr := e.address
	if len(override) > 0 {
		addr = override[0]
	}
	return f.WithAddress(addr), nil
}

// signatureFilter is the relaxed gate: signature tag and emitter only.
func (e *Event) signatureFilter() filter.Filter {
	id := e.sig.ID()
	addr := e.address
	return filter.Filter{
		Address: &addr,
		Topics:  []*common.Hash{&id},
		Decode:  e.sig.Decode,
	}
}

// ExpectOne asserts that the receipt carries exactly one log for this event
// on this emitter, verifies any expected field values against it, checks
// that every declared parameter is present in the decoded value, and returns
// it.
func (e *Event) ExpectOne(receipt *types.Receipt, expected filter.Args) (*event.Decoded, error) {
	f, err := e.NewFilter(expected)
	if err != nil {
		return nil, err
	}

	all, err := match.DecodeAll(receipt.Logs, e.signatureFilter())
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, &CardinalityError{Event: e.Name(), Want: 1, Got: len(all)}
	}

	decoded := all[0]
	if err := e.verifyExpected(f, decoded); err != nil {
		return nil, err
	}
	if err := e.verifyComplete(decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// ExpectOrdered builds one filter per entry in expected, all bound to this
// event and emitter, and matches them as an ordered sequence against the
// receipt's logs. See MatchOrdered for the forwardOnly semantics.
func (e *Event) ExpectOrdered(receipt *types.Receipt, expected []filter.Args, forwardOnly bool) ([]*event.Decoded, error) {
	filters := make([]filter.Filter, len(expected))
	for i, args := range expected {
		f, err := e.NewFilter(args)
		if err != nil {
			return nil, err
		}
		filters[i] = f
	}

	res, err := match.Ordered(receipt.Logs, filters, forwardOnly)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("matched ordered events",
		zap.String("event", e.Name()),
		zap.Int("count", len(res.Events)),
	)
	return res.Events, nil
}

// All decodes every log for this event on this emitter, in receipt order,
// verifying each decoded value carries every declared parameter. Zero
// matches yield an empty slice, not an error.
func (e *Event) All(receipt *types.Receipt) ([]*event.Decoded, error) {
	all, err := match.DecodeAll(receipt.Logs, e.signatureFilter())
	if err != nil {
		return nil, err
	}
	for _, decoded := range all {
		if err := e.verifyComplete(decoded); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// WaitAll resolves the transaction to its receipt, asserts it succeeded,
// and behaves as All. The receipt is returned so sibling Events can inspect
// the same unit of work.
func (e *Event) WaitAll(ctx context.Context, src txwait.ReceiptSource, txHash common.Hash, opts ...txwait.Option) (*types.Receipt, []*event.Decoded, error) {
	receipt, err := txwait.Wait(ctx, src, txHash, opts...)
	if err != nil {
		return nil, nil, err
	}
	all, err := e.All(receipt)
	if err != nil {
		return nil, nil, err
	}
	return receipt, all, nil
}

// NewListener binds this event's decode and verification path to a
// push-based subscription. Every pushed log carrying this signature on this
// emitter is decoded, verified as in All, and accumulated for later
// retrieval.
func (e *Event) NewListener() *subscriber.Listener {
	gate := e.signatureFilter()
	return subscriber.NewListener(
		gate.MatchesSignature,
		func(lg *types.Log) (*event.Decoded, error) {
			decoded, err := e.sig.Decode(lg)
			if err != nil {
				return nil, err
			}
			if err := e.verifyComplete(decoded); err != nil {
				return nil, err
			}
			return decoded, nil
		},
		e.logger,
	)
}

// verifyExpected checks a decoded value against a built filter: topic
// constraints against the log's topics, value constraints against the
// decoded parameters.
func (e *Event) verifyExpected(f filter.Filter, decoded *event.Decoded) error {
	lg := decoded.Raw()

	slot := 1
	for i := 0; i < e.sig.NumParams(); i++ {
		p := e.sig.Param(i)
		if !p.Indexed {
			continue
		}
		want := f.Topics[slot]
		if want != nil && (slot >= len(lg.Topics) || *want != lg.Topics[slot]) {
			var actual interface{}
			if slot < len(lg.Topics) {
				actual = lg.Topics[slot]
			}
			return &FieldMismatchError{
				Event:    e.Name(),
				Field:    p.Name,
				Index:    i,
				Expected: *want,
				Actual:   actual,
			}
		}
		slot++
	}

	for i, want := range f.DataValues {
		if want == nil {
			continue
		}
		if !values.Match(want, decoded.Value(i)) {
			return &FieldMismatchError{
				Event:    e.Name(),
				Field:    e.sig.Param(i).Name,
				Index:    i,
				Expected: want,
				Actual:   decoded.Value(i),
			}
		}
	}
	return nil
}

// verifyComplete checks that every declared parameter is present in the
// decoded value, defending against partially-populated decode results.
func (e *Event) verifyComplete(decoded *event.Decoded) error {
	for i := 0; i < e.sig.NumParams(); i++ {
		if decoded.Len() <= i || decoded.Value(i) == nil {
			return &MissingFieldError{
				Event: e.Name(),
				Field: e.sig.Param(i).Name,
				Index: i,
			}
		}
	}
	return nil
}
