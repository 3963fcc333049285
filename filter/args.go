package filter

// Args is a partial value specification for an event's parameters. It comes
// in three forms: purely positional, purely named, or positional with named
// overrides. The zero value constrains nothing.
type Args struct {
	positional []interface{}
	named      map[string]interface{}
}

// Positional specifies values aligned to the event's declared parameter
// order. nil entries are wildcards.
func Positional(vals ...interface{}) Args {
	return Args{positional: vals}
}

// Named specifies values by declared parameter name. Keys that do not
// correspond to a declared parameter fail filter construction.
func Named(fields map[string]interface{}) Args {
	return Args{named: fields}
}

// Mixed specifies positional values with named overrides. A positional entry
// and a named entry for the same parameter must agree exactly.
func Mixed(vals []interface{}, fields map[string]interface{}) Args {
	return Args{positional: vals, named: fields}
}

// None specifies no constraints: the filter matches on the signature tag and
// emitter address alone.
func None() Args {
	return Args{}
}

// IsEmpty reports whether the specification constrains nothing.
func (a Args) IsEmpty() bool {
	if len(a.named) > 0 {
		return false
	}
	for _, v := range a.positional {
		if v != nil {
			return false
		}
	}
	return true
}
