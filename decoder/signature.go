package decoder

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// SignatureHash computes the Keccak-256 hash of a canonical event signature
// string, e.g. "Transfer(address,address,uint256)". The result is the
// signature tag stored as topic 0 of every matching log.
func SignatureHash(sig string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// ParseSignature builds a Signature from a human-readable Solidity event
// declaration, as an alternative to resolving it from a JSON ABI.
//
// Supported formats:
//   - "Transfer(address,address,uint256)"
//   - "Transfer(address indexed from, address indexed to, uint256 value)"
//
// Tuple parameters are not supported in string form; use a JSON ABI for
// events with struct parameters.
func ParseSignature(sig string) (*Signature, error) {
	sig = strings.TrimSpace(sig)

	parenOpen := strings.IndexByte(sig, '(')
	parenClose := strings.LastIndexByte(sig, ')')
	if parenOpen < 0 || parenClose < 0 || parenClose <= parenOpen {
		return nil, fmt.Errorf("decoder: malformed event signature: %q", sig)
	}

	name := strings.TrimSpace(sig[:parenOpen])
	if name == "" {
		return nil, fmt.Errorf("decoder: empty event name in signature: %q", sig)
	}

	var inputs abi.Arguments
	paramsStr := strings.TrimSpace(sig[parenOpen+1 : parenClose])
	if paramsStr != "" {
		for _, part := range splitParams(paramsStr) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			arg, err := parseParam(part)
			if err != nil {
				return nil, fmt.Errorf("decoder: %v in signature %q", err, sig)
			}
			inputs = append(inputs, arg)
		}
	}

	return &Signature{ev: abi.NewEvent(name, name, false, inputs)}, nil
}

func parseParam(s string) (abi.Argument, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return abi.Argument{}, fmt.Errorf("empty parameter")
	}

	typeStr := tokens[0]
	if strings.ContainsAny(typeStr, "()") {
		return abi.Argument{}, fmt.Errorf("tuple parameter %q not supported", typeStr)
	}

	var arg abi.Argument
	for _, tok := range tokens[1:] {
		if tok == "indexed" {
			arg.Indexed = true
		} else {
			arg.Name = tok
		}
	}

	typ, err := abi.NewType(typeStr, "", nil)
	if err != nil {
		return abi.Argument{}, fmt.Errorf("invalid type %q: %v", typeStr, err)
	}
	arg.Type = typ
	return arg, nil
}

// splitParams splits a parameter list on top-level commas, tolerating nested
// brackets in array types.
func splitParams(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, ch := range s {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
