package event

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Bind decodes the event parameters into a user-defined struct.
// Fields are matched by the "abi" struct tag, or by case-insensitive field
// name. Supported field types: common.Address, common.Hash, IndexedValue,
// *big.Int, bool, string, uint8-uint64, int8-int64 and []byte.
//
// Example:
//
//	type Transfer struct {
//	    From  common.Address `abi:"from"`
//	    To    common.Address `abi:"to"`
//	    Value *big.Int       `abi:"value"`
//	}
//
//	var evt Transfer
//	decoded.Bind(&evt)
func (d *Decoded) Bind(out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("event: Bind requires a non-nil pointer to struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("event: Bind requires a pointer to struct, got %s", rv.Kind())
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		paramName := field.Tag.Get("abi")
		if paramName == "-" {
			continue
		}
		if paramName == "" {
			paramName = field.Name
		}

		val, ok := d.ByName(paramName)
		if !ok {
			val, ok = d.byNameInsensitive(paramName)
		}
		if !ok {
			continue // no matching parameter, skip
		}

		if err := assignValue(rv.Field(i), val); err != nil {
			return fmt.Errorf("event: field %s: %w", field.Name, err)
		}
	}
	return nil
}

func (d *Decoded) byNameInsensitive(name string) (interface{}, bool) {
	for k, i := range d.byName {
		if strings.EqualFold(k, name) {
			return d.params[i].Value, true
		}
	}
	return nil, false
}

var hashType = reflect.TypeOf(common.Hash{})

func assignValue(field reflect.Value, val interface{}) error {
	if val == nil {
		return nil
	}

	// An indexed dynamic parameter unwraps to its topic hash.
	if iv, ok := val.(IndexedValue); ok && field.Type() == hashType {
		field.Set(reflect.ValueOf(iv.Hash))
		return nil
	}

	vv := reflect.ValueOf(val)
	if vv.Type().AssignableTo(field.Type()) {
		field.Set(vv)
		return nil
	}

	if isIntegerKind(vv.Kind()) && isIntegerKind(field.Kind()) && vv.Type().ConvertibleTo(field.Type()) {
		field.Set(vv.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", val, field.Type())
}

func isIntegerKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}
