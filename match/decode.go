package match

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/windranger-io/ethers-contract-tools/event"
	"github.com/windranger-io/ethers-contract-tools/filter"
)

// DecodeAll scans logs once in original order and decodes every record whose
// signature tag and emitter address match the filter. This is the relaxed
// single-filter path used for unordered bulk collection: parameter
// constraints, ordering and consumption do not apply, and an empty result is
// not an error.
func DecodeAll(logs []*types.Log, f filter.Filter) ([]*event.Decoded, error) {
	var out []*event.Decoded
	for j, lg := range logs {
		if !f.MatchesSignature(lg) {
			continue
		}
		decoded, err := f.Decode(lg)
		if err != nil {
			return nil, fmt.Errorf("match: decode log at position %d: %w", j, err)
		}
		out = append(out, decoded)
	}
	return out, nil
}
