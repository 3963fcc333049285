// Package values implements deep structural comparison between expected and
// actual decoded event values, tolerant of nil "don't care" placeholders.
package values

import (
	"bytes"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
)

// Match reports whether actual satisfies expected.
//
// A nil expected value always matches. Sequences match only sequences of the
// same length, element-wise; maps match only maps with identical key sets,
// value-wise. There is no coercion between sequences and maps. Scalars are
// compared by equality, with domain-aware handling for *big.Int (numeric
// equality regardless of pointer identity and across Go integer kinds),
// byte slices, addresses and hashes.
func Match(expected, actual interface{}) bool {
	if expected == nil {
		return true
	}

	if ok, decided := matchScalar(expected, actual); decided {
		return ok
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)

	switch ev.Kind() {
	case reflect.Slice, reflect.Array:
		if av.Kind() != reflect.Slice && av.Kind() != reflect.Array {
			return false
		}
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !Match(itemOf(ev, i), itemOf(av, i)) {
				return false
			}
		}
		return true

	case reflect.Map:
		if av.Kind() != reflect.Map || ev.Len() != av.Len() {
			return false
		}
		for _, key := range ev.MapKeys() {
			actualVal := av.MapIndex(key)
			if !actualVal.IsValid() {
				return false
			}
			if !Match(valueOf(ev.MapIndex(key)), valueOf(actualVal)) {
				return false
			}
		}
		return true

	default:
		return reflect.DeepEqual(expected, actual)
	}
}

// matchScalar handles the scalar types decoded event values actually carry.
// The second return value reports whether the comparison was decided here.
func matchScalar(expected, actual interface{}) (bool, bool) {
	switch exp := expected.(type) {
	case *big.Int:
		act, ok := toBigInt(actual)
		return ok && exp.Cmp(act) == 0, true
	case []byte:
		act, ok := actual.([]byte)
		return ok && bytes.Equal(exp, act), true
	case common.Address:
		act, ok := actual.(common.Address)
		return ok && exp == act, true
	case common.Hash:
		act, ok := actual.(common.Hash)
		return ok && exp == act, true
	case bool:
		act, ok := actual.(bool)
		return ok && exp == act, true
	case string:
		act, ok := actual.(string)
		return ok && exp == act, true
	}

	// Plain Go integers compare numerically against any integer kind,
	// including *big.Int actuals produced by uint256/int256 decoding.
	if exp, ok := toBigInt(expected); ok {
		act, ok := toBigInt(actual)
		return ok && exp.Cmp(act) == 0, true
	}

	return false, false
}

func toBigInt(v interface{}) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return n, true
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	}
	return nil, false
}

// itemOf extracts element i of a slice or array as an interface value,
// preserving nil interface elements as untyped nil.
func itemOf(v reflect.Value, i int) interface{} {
	return valueOf(v.Index(i))
}

func valueOf(v reflect.Value) interface{} {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}
	return v.Interface()
}
