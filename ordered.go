package evtools

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/windranger-io/ethers-contract-tools/event"
	"github.com/windranger-io/ethers-contract-tools/filter"
	"github.com/windranger-io/ethers-contract-tools/match"
)

// MatchOrdered matches a sequence of filters, possibly assembled from
// several Events on different emitters, against a log sequence. One decoded
// result is returned per filter, in filter order; matched logs are consumed
// exactly once and their positions strictly increase.
//
// With forwardOnly true every search starts strictly after the previous
// match, so the prefix before the first anchor event becomes unreachable for
// later filters. With forwardOnly false earlier unconsumed logs remain
// eligible candidates, but each filter must still resolve to a strictly
// later log than the one before.
func MatchOrdered(logs []*types.Log, filters []filter.Filter, forwardOnly bool) ([]*event.Decoded, error) {
	res, err := match.Ordered(logs, filters, forwardOnly)
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// MatchOrderedEmitters is MatchOrdered returning the emitting address
// alongside each decoded result, for callers matching filters whose emitter
// is not fixed.
func MatchOrderedEmitters(logs []*types.Log, filters []filter.Filter, forwardOnly bool) ([]common.Address, []*event.Decoded, error) {
	res, err := match.Ordered(logs, filters, forwardOnly)
	if err != nil {
		return nil, nil, err
	}
	return res.Addresses, res.Events, nil
}
