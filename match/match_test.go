package match

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/windranger-io/ethers-contract-tools/decoder"
	"github.com/windranger-io/ethers-contract-tools/filter"
)

var emitter = common.HexToAddress("0xdead")

func storeSig(t *testing.T) *decoder.Signature {
	t.Helper()
	sig, err := decoder.ParseSignature("Store(uint256 value)")
	require.NoError(t, err)
	return sig
}

// storeLogs packs one Store(value) log per given value, in order.
func storeLogs(t *testing.T, sig *decoder.Signature, vals ...int64) []*types.Log {
	t.Helper()
	uint256Ty, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)

	logs := make([]*types.Log, len(vals))
	for i, v := range vals {
		data, err := abi.Arguments{{Type: uint256Ty}}.Pack(big.NewInt(v))
		require.NoError(t, err)
		logs[i] = &types.Log{
			Address: emitter,
			Topics:  []common.Hash{sig.ID()},
			Data:    data,
		}
	}
	return logs
}

func storeFilter(t *testing.T, sig *decoder.Signature, val int64) filter.Filter {
	t.Helper()
	f, err := filter.Build(sig, filter.Positional(big.NewInt(val)))
	require.NoError(t, err)
	return f.WithAddress(emitter)
}

func wildcardFilter(t *testing.T, sig *decoder.Signature) filter.Filter {
	t.Helper()
	f, err := filter.Build(sig, filter.None())
	require.NoError(t, err)
	return f.WithAddress(emitter)
}

func storedValue(t *testing.T, res *Result, i int) int64 {
	t.Helper()
	v, ok := res.Events[i].ByName("value")
	require.True(t, ok)
	return v.(*big.Int).Int64()
}

func TestOrderedCompleteness(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 2, 3)

	res, err := Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 2),
		storeFilter(t, sig, 3),
	}, false)
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, res.Positions)
	require.Equal(t, []common.Address{emitter, emitter}, res.Addresses)
	require.Equal(t, int64(2), storedValue(t, res, 0))
	require.Equal(t, int64(3), storedValue(t, res, 1))
}

func TestOrderedViolation(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 2, 3)

	_, err := Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 3),
		storeFilter(t, sig, 2),
	}, false)
	require.ErrorIs(t, err, ErrOrderViolation)

	var verr *OrderViolationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 1, verr.FilterIndex)
	require.Equal(t, 1, verr.Position)
	require.Equal(t, 2, verr.Previous)
}

func TestOrderedNotFound(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 2)

	_, err := Ordered(logs, []filter.Filter{storeFilter(t, sig, 9)}, false)
	require.ErrorIs(t, err, ErrNoMatch)

	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, 0, nerr.FilterIndex)
	require.Equal(t, sig.ID(), nerr.EventID)
}

func TestOrderedExclusivity(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 7, 7)

	// Two identical filters consume two distinct logs.
	res, err := Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 7),
		storeFilter(t, sig, 7),
	}, false)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, res.Positions)

	// A third has nothing left.
	_, err = Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 7),
		storeFilter(t, sig, 7),
		storeFilter(t, sig, 7),
	}, false)
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestOrderedPrefersLaterValidCandidate(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	// Candidates for the second filter exist at positions 0 and 3; only the
	// later one respects the ordering after the first filter matches at 1.
	logs := storeLogs(t, sig, 9, 5, 7, 9, 8)

	res, err := Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 5),
		storeFilter(t, sig, 9),
	}, false)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, res.Positions)
}

func TestOrderedForwardOnlyDiscardsPrefix(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 4, 5)

	// Non-forward search may reach back to position 0 for the second
	// filter, but position 0 precedes the first match so it fails as an
	// ordering violation.
	_, err := Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 5),
		storeFilter(t, sig, 4),
	}, false)
	require.ErrorIs(t, err, ErrOrderViolation)

	// Forward-only search never even sees position 0: not found.
	_, err = Ordered(logs, []filter.Filter{
		storeFilter(t, sig, 5),
		storeFilter(t, sig, 4),
	}, true)
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestOrderedWildcardTransparency(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 2, 3)

	// A fully wildcard filter takes the first unconsumed matching log.
	res, err := Ordered(logs, []filter.Filter{
		wildcardFilter(t, sig),
		wildcardFilter(t, sig),
	}, false)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, res.Positions)
}

func TestOrderedAddressRestriction(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 1)
	other := common.HexToAddress("0xbeef")
	logs[0].Address = other

	res, err := Ordered(logs, []filter.Filter{storeFilter(t, sig, 1)}, false)
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Positions)

	f, err := filter.Build(sig, filter.Positional(big.NewInt(1)))
	require.NoError(t, err)
	res, err = Ordered(logs, []filter.Filter{f.WithAddress(other)}, false)
	require.NoError(t, err)
	require.Equal(t, []int{0}, res.Positions)
	require.Equal(t, []common.Address{other}, res.Addresses)
}

func TestDecodeAll(t *testing.T) {
	t.Parallel()

	sig := storeSig(t)
	logs := storeLogs(t, sig, 1, 2, 3)
	logs[1].Address = common.HexToAddress("0xbeef") // foreign emitter

	// Parameter constraints do not apply on the relaxed path: the value
	// filter below still collects every log on the emitter.
	all, err := DecodeAll(logs, storeFilter(t, sig, 2))
	require.NoError(t, err)
	require.Len(t, all, 2)
	v0, _ := all[0].ByName("value")
	v1, _ := all[1].ByName("value")
	require.Equal(t, int64(1), v0.(*big.Int).Int64())
	require.Equal(t, int64(3), v1.(*big.Int).Int64())

	// Zero matches is not an error.
	none, err := DecodeAll(nil, storeFilter(t, sig, 1))
	require.NoError(t, err)
	require.Empty(t, none)
}
