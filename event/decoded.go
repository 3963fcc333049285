// Package event defines the decoded representation of contract event logs.
package event

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// IndexedValue stands in for an indexed parameter of a dynamic type (string,
// bytes, array, struct). The chain stores only the Keccak-256 hash of such
// values in the topic, so the original value cannot be recovered from a log.
type IndexedValue struct {
	Hash common.Hash
}

// Hex returns the stored topic hash as a hex string.
func (v IndexedValue) Hex() string {
	return v.Hash.Hex()
}

// String implements fmt.Stringer.
func (v IndexedValue) String() string {
	return "indexed(" + v.Hash.Hex() + ")"
}

// Param is a single decoded event parameter.
type Param struct {
	// Name is the parameter name from the event declaration, or "" if the
	// declaration omitted it.
	Name string

	// Indexed reports whether the parameter was stored in a topic.
	Indexed bool

	// Value is the decoded value. Indexed parameters of dynamic types carry
	// an IndexedValue instead of the original value.
	Value interface{}
}

// Decoded is a decoded event log. Every parameter is accessible by its
// declared position, and by name where the declaration names it.
type Decoded struct {
	name   string
	raw    *types.Log
	params []Param
	byName map[string]int
}

// NewDecoded assembles a Decoded from the event name, the originating log
// and the parameters in declared order.
func NewDecoded(name string, raw *types.Log, params []Param) *Decoded {
	byName := make(map[string]int, len(params))
	for i, p := range params {
		if p.Name != "" {
			byName[p.Name] = i
		}
	}
	return &Decoded{
		name:   name,
		raw:    raw,
		params: params,
		byName: byName,
	}
}

// Name returns the event name (e.g. "Transfer").
func (d *Decoded) Name() string {
	return d.name
}

// Address returns the address of the contract that emitted the log.
func (d *Decoded) Address() common.Address {
	if d.raw == nil {
		return common.Address{}
	}
	return d.raw.Address
}

// Raw returns the original unmodified log.
func (d *Decoded) Raw() *types.Log {
	return d.raw
}

// Len returns the number of declared parameters.
func (d *Decoded) Len() int {
	return len(d.params)
}

// Param returns the parameter at the given declared position.
func (d *Decoded) Param(i int) Param {
	return d.params[i]
}

// Value returns the decoded value at the given declared position.
func (d *Decoded) Value(i int) interface{} {
	return d.params[i].Value
}

// ByName returns the decoded value for the named parameter.
func (d *Decoded) ByName(name string) (interface{}, bool) {
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.params[i].Value, true
}

// Values returns the decoded values in declared order. The returned slice is
// a fresh copy owned by the caller.
func (d *Decoded) Values() []interface{} {
	out := make([]interface{}, len(d.params))
	for i, p := range d.params {
		out[i] = p.Value
	}
	return out
}

// String returns a human-readable representation of the decoded event.
func (d *Decoded) String() string {
	var b strings.Builder
	b.WriteString(d.name)
	b.WriteByte('(')
	for i, p := range d.params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			fmt.Fprintf(&b, "%s=", p.Name)
		}
		b.WriteString(formatValue(p.Value))
	}
	b.WriteByte(')')
	if d.raw != nil {
		fmt.Fprintf(&b, " address=%s", d.raw.Address.Hex())
	}
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case IndexedValue:
		return val.String()
	case *big.Int:
		if val == nil {
			return "0"
		}
		return val.String()
	case []byte:
		return "0x" + common.Bytes2Hex(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
