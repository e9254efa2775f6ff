package etf

// Term is any decoded or encodable ETF value: Atom, int, int64, *big.Int,
// float64, []byte (binary), List, *ImproperList, Tuple, *Map, string (text,
// encode-only), bool/nil (the predefined-atom mappings), or *OpaqueObject.
type Term any

// Tuple is an ordered, fixed-arity sequence of terms (spec.md §3).
type Tuple []Term

// Element returns the 1-indexed element, matching Erlang's own
// element/2 numbering — grounded on
// _examples/other_examples/82dcce2c_DeedleFake-etf__etf.go.go's
// Tuple.Element.
func (t Tuple) Element(i int) Term {
	return t[i-1]
}
