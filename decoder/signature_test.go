package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureHash(t *testing.T) {
	t.Parallel()

	// Well-known ERC-20 Transfer signature tag.
	require.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		SignatureHash("Transfer(address,address,uint256)").Hex(),
	)
}

func TestParseSignature(t *testing.T) {
	t.Parallel()

	sig, err := ParseSignature("Transfer(address indexed from, address indexed to, uint256 value)")
	require.NoError(t, err)
	require.Equal(t, "Transfer", sig.Name())
	require.Equal(t, 3, sig.NumParams())
	require.Equal(t, Param{Name: "from", Indexed: true}, sig.Param(0))
	require.Equal(t, Param{Name: "to", Indexed: true}, sig.Param(1))
	require.Equal(t, Param{Name: "value"}, sig.Param(2))

	// The parsed declaration produces the canonical signature tag.
	require.Equal(t, SignatureHash("Transfer(address,address,uint256)"), sig.ID())
}

func TestParseSignatureMatchesJSONABI(t *testing.T) {
	t.Parallel()

	fromJSON, err := NewRegistry(mustABI(t, tokenABI)).Resolve("Transfer")
	require.NoError(t, err)

	fromString, err := ParseSignature("Transfer(address indexed from, address indexed to, uint256 value)")
	require.NoError(t, err)

	require.Equal(t, fromJSON.ID(), fromString.ID())
	require.Equal(t, fromJSON.String(), fromString.String())
}

func TestParseSignatureBareTypes(t *testing.T) {
	t.Parallel()

	sig, err := ParseSignature("Store(uint256)")
	require.NoError(t, err)
	require.Equal(t, "Store", sig.Name())
	require.Equal(t, 1, sig.NumParams())
	require.Equal(t, Param{}, sig.Param(0))

	sig, err = ParseSignature("Ping()")
	require.NoError(t, err)
	require.Equal(t, 0, sig.NumParams())
}

func TestParseSignatureRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"Transfer",
		"(address)",
		"Transfer(address",
		"Swap((uint256,uint256) pair)",
		"Store(notatype value)",
	} {
		_, err := ParseSignature(bad)
		require.Error(t, err, "signature %q", bad)
	}
}
