package values

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestMatchWildcard(t *testing.T) {
	t.Parallel()

	require.True(t, Match(nil, big.NewInt(42)))
	require.True(t, Match(nil, nil))
	require.True(t, Match(nil, "anything"))
}

func TestMatchScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected interface{}
		actual   interface{}
		want     bool
	}{
		{"big equal", big.NewInt(5), big.NewInt(5), true},
		{"big unequal", big.NewInt(5), big.NewInt(6), false},
		{"big vs int", big.NewInt(5), 5, true},
		{"int vs big", 5, big.NewInt(5), true},
		{"uint64 vs big", uint64(5), big.NewInt(5), true},
		{"int vs string", 5, "5", false},
		{"string equal", "hello", "hello", true},
		{"string unequal", "hello", "world", false},
		{"bool equal", true, true, true},
		{"bool vs int", true, 1, false},
		{"bytes equal", []byte{1, 2}, []byte{1, 2}, true},
		{"bytes unequal", []byte{1, 2}, []byte{2, 1}, false},
		{"address equal", common.HexToAddress("0x01"), common.HexToAddress("0x01"), true},
		{"address unequal", common.HexToAddress("0x01"), common.HexToAddress("0x02"), false},
		{"hash equal", common.HexToHash("0xaa"), common.HexToHash("0xaa"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Match(tt.expected, tt.actual))
		})
	}
}

func TestMatchSequences(t *testing.T) {
	t.Parallel()

	require.True(t, Match(
		[]interface{}{big.NewInt(1), nil, "x"},
		[]interface{}{big.NewInt(1), big.NewInt(2), "x"},
	))

	// Length must agree.
	require.False(t, Match(
		[]interface{}{big.NewInt(1)},
		[]interface{}{big.NewInt(1), big.NewInt(2)},
	))

	// Element mismatch.
	require.False(t, Match(
		[]interface{}{big.NewInt(1), big.NewInt(3)},
		[]interface{}{big.NewInt(1), big.NewInt(2)},
	))

	// Typed slices compare element-wise across kinds.
	require.True(t, Match([]int{1, 2}, []interface{}{big.NewInt(1), big.NewInt(2)}))
}

func TestMatchMaps(t *testing.T) {
	t.Parallel()

	require.True(t, Match(
		map[string]interface{}{"a": big.NewInt(1), "b": nil},
		map[string]interface{}{"a": big.NewInt(1), "b": "whatever"},
	))

	// Key sets must be identical.
	require.False(t, Match(
		map[string]interface{}{"a": big.NewInt(1)},
		map[string]interface{}{"a": big.NewInt(1), "b": big.NewInt(2)},
	))
	require.False(t, Match(
		map[string]interface{}{"a": big.NewInt(1), "c": big.NewInt(2)},
		map[string]interface{}{"a": big.NewInt(1), "b": big.NewInt(2)},
	))
}

func TestMatchNoShapeCoercion(t *testing.T) {
	t.Parallel()

	require.False(t, Match([]interface{}{big.NewInt(1)}, map[string]interface{}{"a": big.NewInt(1)}))
	require.False(t, Match(map[string]interface{}{"a": big.NewInt(1)}, []interface{}{big.NewInt(1)}))
	require.False(t, Match([]interface{}{big.NewInt(1)}, big.NewInt(1)))
}
