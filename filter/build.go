package filter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/windranger-io/ethers-contract-tools/decoder"
	"github.com/windranger-io/ethers-contract-tools/values"
)

// Build constructs a Filter for the given signature from a partial value
// specification.
//
// Resolution walks the declared parameters in order. For each parameter the
// positional entry and the named entry (when both are present and concrete)
// must agree exactly. Indexed parameters become topic constraints, encoded
// to their exact-match form; non-indexed parameters become post-decode value
// constraints. The value-constraint list is populated only when at least one
// non-indexed parameter received a concrete value.
//
// The returned filter carries no emitter restriction; see Filter.WithAddress.
func Build(sig *decoder.Signature, args Args) (Filter, error) {
	n := sig.NumParams()

	if len(args.positional) > n {
		return Filter{}, &RangeError{
			Event:     sig.Name(),
			Index:     len(args.positional) - 1,
			NumParams: n,
		}
	}

	consumed := make(map[string]bool, len(args.named))

	resolved := make([]interface{}, n)
	for i := 0; i < n; i++ {
		p := sig.Param(i)

		var positional interface{}
		if i < len(args.positional) {
			positional = args.positional[i]
		}

		var named interface{}
		if p.Name != "" {
			if v, ok := args.named[p.Name]; ok {
				named = v
				consumed[p.Name] = true
			}
		}

		switch {
		case positional != nil && named != nil:
			if !agrees(positional, named) {
				return Filter{}, &ConsistencyError{
					Event:      sig.Name(),
					Field:      p.Name,
					Index:      i,
					Positional: positional,
					Named:      named,
				}
			}
			resolved[i] = named
		case named != nil:
			resolved[i] = named
		default:
			resolved[i] = positional
		}
	}

	for name := range args.named {
		if !consumed[name] {
			return Filter{}, &UnknownFieldError{Event: sig.Name(), Field: name}
		}
	}

	id := sig.ID()
	topics := []*common.Hash{&id}
	var dataValues []interface{}
	hasDataConstraint := false

	for i := 0; i < n; i++ {
		p := sig.Param(i)
		if p.Indexed {
			if resolved[i] == nil {
				topics = append(topics, nil)
				continue
			}
			topic, err := sig.EncodeTopic(i, resolved[i])
			if err != nil {
				return Filter{}, err
			}
			topics = append(topics, &topic)
		} else if resolved[i] != nil {
			hasDataConstraint = true
		}
	}

	if hasDataConstraint {
		dataValues = make([]interface{}, n)
		for i := 0; i < n; i++ {
			if !sig.Param(i).Indexed {
				dataValues[i] = resolved[i]
			}
		}
	}

	return Filter{
		Topics:     topics,
		DataValues: dataValues,
		Decode:     sig.Decode,
	}, nil
}

// agrees reports whether two concrete values specify the same thing. The
// comparison is the matcher's equality in both directions, so equivalent
// numeric kinds agree while genuinely different values do not.
func agrees(a, b interface{}) bool {
	return values.Match(a, b) && values.Match(b, a)
}
