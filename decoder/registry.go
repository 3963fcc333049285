// Package decoder resolves event declarations from contract ABIs and decodes
// raw logs into structured event values.
package decoder

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/windranger-io/ethers-contract-tools/event"
)

var (
	// ErrUnknownEvent is returned when no registered ABI declares the event.
	ErrUnknownEvent = errors.New("decoder: unknown event")

	// ErrAmbiguousEvent is returned when two registered ABIs declare the same
	// event name with different signatures.
	ErrAmbiguousEvent = errors.New("decoder: ambiguous event")

	// ErrDecode is returned when a log cannot be decoded against a signature.
	ErrDecode = errors.New("decoder: decode failed")
)

// Registry resolves event names against one or more contract ABIs.
type Registry struct {
	abis []*abi.ABI
}

// NewRegistry creates a registry over the given ABIs. Resolution scans them
// in order.
func NewRegistry(abis ...*abi.ABI) *Registry {
	return &Registry{abis: abis}
}

// Add registers another ABI. Later additions have lower resolution priority.
func (r *Registry) Add(a *abi.ABI) {
	r.abis = append(r.abis, a)
}

// Resolve finds the event with the given name. The first ABI declaring the
// name wins; a second declaration with a different signature is reported as
// ErrAmbiguousEvent rather than silently shadowed.
func (r *Registry) Resolve(name string) (*Signature, error) {
	var found *abi.Event
	for _, a := range r.abis {
		ev, ok := a.Events[name]
		if !ok {
			continue
		}
		if found == nil {
			e := ev
			found = &e
			continue
		}
		if found.ID != ev.ID {
			return nil, fmt.Errorf("%w: %q declared as both %s and %s",
				ErrAmbiguousEvent, name, found.Sig, ev.Sig)
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return &Signature{ev: *found}, nil
}

// Param describes a single declared event parameter.
type Param struct {
	// Name is the declared parameter name, or "" when the declaration
	// omitted it.
	Name string

	// Indexed reports whether the parameter is stored in a topic.
	Indexed bool

	// Dynamic reports whether the parameter has a dynamic type whose indexed
	// form is stored only as a hash.
	Dynamic bool
}

// Signature is a resolved event declaration bound to decoding and topic
// encoding capabilities.
type Signature struct {
	ev abi.Event
}

// NewSignature wraps an already-constructed abi.Event.
func NewSignature(ev abi.Event) *Signature {
	return &Signature{ev: ev}
}

// Name returns the declared event name.
func (s *Signature) Name() string {
	return s.ev.RawName
}

// ID returns the signature tag: the Keccak-256 hash of the canonical
// signature, stored as topic 0 of every matching log.
func (s *Signature) ID() common.Hash {
	return s.ev.ID
}

// String returns the canonical signature, e.g. "Transfer(address,address,uint256)".
func (s *Signature) String() string {
	return s.ev.Sig
}

// NumParams returns the number of declared parameters.
func (s *Signature) NumParams() int {
	return len(s.ev.Inputs)
}

// Param describes the parameter at the given declared position.
func (s *Signature) Param(i int) Param {
	in := s.ev.Inputs[i]
	return Param{Name: in.Name, Indexed: in.Indexed, Dynamic: isDynamicTopic(in.Type)}
}

// ParamIndex returns the declared position of the named parameter.
func (s *Signature) ParamIndex(name string) (int, bool) {
	for i, in := range s.ev.Inputs {
		if in.Name == name {
			return i, true
		}
	}
	return 0, false
}

// EncodeTopic encodes a concrete value for the indexed parameter at declared
// position i into its exact-match topic form. Dynamic types are reduced to
// their Keccak-256 hash, mirroring how the chain stores them.
func (s *Signature) EncodeTopic(i int, value interface{}) (common.Hash, error) {
	in := s.ev.Inputs[i]
	if !in.Indexed {
		return common.Hash{}, fmt.Errorf("decoder: parameter %q of %s is not indexed", in.Name, s.ev.RawName)
	}
	topics, err := abi.MakeTopics([]interface{}{normalizeTopicValue(value)})
	if err != nil {
		return common.Hash{}, fmt.Errorf("decoder: encode topic %q of %s: %w", in.Name, s.ev.RawName, err)
	}
	return topics[0][0], nil
}

// Decode decodes a log carrying this signature into a structured value.
// Indexed parameters are recovered from topics, non-indexed parameters from
// the data payload. Indexed parameters of dynamic types are represented by
// event.IndexedValue.
func (s *Signature) Decode(lg *types.Log) (*event.Decoded, error) {
	if len(lg.Topics) == 0 || lg.Topics[0] != s.ev.ID {
		return nil, fmt.Errorf("%w: log does not carry signature %s", ErrDecode, s.ev.Sig)
	}

	indexed := 0
	for _, in := range s.ev.Inputs {
		if in.Indexed {
			indexed++
		}
	}
	if len(lg.Topics)-1 != indexed {
		return nil, fmt.Errorf("%w: %s expects %d indexed topics, log has %d",
			ErrDecode, s.ev.Sig, indexed, len(lg.Topics)-1)
	}

	var dataValues []interface{}
	nonIndexed := s.ev.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		vals, err := nonIndexed.Unpack(lg.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: unpack data of %s: %v", ErrDecode, s.ev.Sig, err)
		}
		dataValues = vals
	}

	params := make([]event.Param, len(s.ev.Inputs))
	ti, di := 1, 0
	for i, in := range s.ev.Inputs {
		var (
			val interface{}
			err error
		)
		if in.Indexed {
			topic := lg.Topics[ti]
			ti++
			if isDynamicTopic(in.Type) {
				val = event.IndexedValue{Hash: topic}
			} else if val, err = parseTopicValue(in.Type, topic); err != nil {
				return nil, fmt.Errorf("%w: topic %q of %s: %v", ErrDecode, in.Name, s.ev.Sig, err)
			}
		} else {
			val = dataValues[di]
			di++
		}
		params[i] = event.Param{Name: in.Name, Indexed: in.Indexed, Value: val}
	}

	return event.NewDecoded(s.ev.RawName, lg, params), nil
}

// isDynamicTopic reports whether the indexed form of the type is stored only
// as a hash and cannot be recovered from a log.
func isDynamicTopic(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return true
	default:
		return false
	}
}

// parseTopicValue converts a topic word to a Go value according to the ABI
// argument type.
func parseTopicValue(t abi.Type, topic common.Hash) (interface{}, error) {
	word := topic.Bytes()
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return abi.ReadInteger(t, word)
	case abi.BoolTy:
		return readBool(word)
	case abi.AddressTy:
		return common.BytesToAddress(word), nil
	case abi.FixedBytesTy, abi.FunctionTy:
		return abi.ReadFixedBytes(t, word)
	case abi.HashTy:
		return topic, nil
	default:
		return topic, nil
	}
}

// readBool converts a 32-byte word to a boolean. Valid encodings have all
// bytes except the last set to zero, and the last byte set to 0 or 1.
func readBool(word []byte) (bool, error) {
	for _, b := range word[:31] {
		if b != 0 {
			return false, fmt.Errorf("improperly encoded boolean value")
		}
	}
	switch word[31] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("improperly encoded boolean value")
	}
}

// normalizeTopicValue widens bare int/uint values so topic encoding accepts
// them; other values pass through unchanged.
func normalizeTopicValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint:
		return uint64(n)
	default:
		return v
	}
}
