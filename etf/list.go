package etf

import (
	"bytes"
	"math/big"
)

// List is a proper, ordered sequence of terms. Unlike Map and ImproperList
// it stays a plain mutable Go slice for its whole life — spec.md §3 only
// asks that it behave "as a host sequence", and a Go slice already does.
type List []Term

// ToString joins the elements into a text string, succeeding iff every
// element is an integer in 0..0x10FFFF (spec.md §4.3).
func (l List) ToString() (string, error) {
	runes := make([]rune, 0, len(l))
	for _, el := range l {
		n, ok := asCodepoint(el)
		if !ok {
			return "", typeErr("List.ToString: element %#v is not a code point", el)
		}
		runes = append(runes, rune(n))
	}
	return string(runes), nil
}

func asCodepoint(t Term) (int64, bool) {
	var n int64
	switch v := t.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return 0, false
	}
	if n < 0 || n > 0x10FFFF {
		return 0, false
	}
	return n, true
}

// ImproperList is a List whose final cdr is not nil: a non-empty head
// sequence plus a tail term that is not itself a list. Instances are
// frozen at construction (spec.md §3); every mutating method unconditionally
// returns MutationError.
type ImproperList struct {
	elems []Term
	tail  Term
}

// NewImproperList constructs a frozen ImproperList. elements must be
// non-empty (ValueError otherwise) and tail must not be a List or
// *ImproperList (TypeError otherwise) — decode, unlike construction, permits
// any tail (spec.md §3).
func NewImproperList(elements []Term, tail Term) (*ImproperList, error) {
	if len(elements) == 0 {
		return nil, valueErr("ImproperList requires at least one element")
	}
	switch tail.(type) {
	case List, *ImproperList:
		return nil, typeErr("ImproperList tail must not be a list")
	}
	frozen := make([]Term, len(elements))
	copy(frozen, elements)
	return &ImproperList{elems: frozen, tail: tail}, nil
}

// Elements returns the frozen head sequence. The returned slice is a copy;
// mutating it does not affect the ImproperList.
func (l *ImproperList) Elements() []Term {
	cp := make([]Term, len(l.elems))
	copy(cp, l.elems)
	return cp
}

// Tail returns the frozen tail term.
func (l *ImproperList) Tail() Term {
	return l.tail
}

func (l *ImproperList) Len() int {
	return len(l.elems)
}

// newImproperListDecoded builds an ImproperList straight from decoded wire
// data. Unlike NewImproperList it does not reject a List tail: spec.md §3
// restricts that only at construction time ("decode permits any tail").
func newImproperListDecoded(elements []Term, tail Term) *ImproperList {
	frozen := make([]Term, len(elements))
	copy(frozen, elements)
	return &ImproperList{elems: frozen, tail: tail}
}

// Append always fails: ImproperList is frozen after construction.
func (l *ImproperList) Append(Term) error {
	return mutation("ImproperList.Append")
}

// SetTail always fails: ImproperList is frozen after construction.
func (l *ImproperList) SetTail(Term) error {
	return mutation("ImproperList.SetTail")
}

// Equal reports structural equality: same elements in the same order and
// an equal tail.
func (l *ImproperList) Equal(other *ImproperList) bool {
	if other == nil || len(l.elems) != len(other.elems) {
		return false
	}
	for i := range l.elems {
		if !termsEqual(l.elems[i], other.elems[i]) {
			return false
		}
	}
	return termsEqual(l.tail, other.tail)
}

func termsEqual(a, b Term) bool {
	if al, ok := a.(*ImproperList); ok {
		bl, ok := b.(*ImproperList)
		return ok && al.Equal(bl)
	}
	if am, ok := a.(*Map); ok {
		bm, ok := b.(*Map)
		return ok && am.Equal(bm)
	}
	if ao, ok := a.(*OpaqueObject); ok {
		bo, ok := b.(*OpaqueObject)
		return ok && ao.Equal(bo)
	}
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	if al, ok := a.(List); ok {
		bl, ok := b.(List)
		if !ok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !termsEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	if at, ok := a.(Tuple); ok {
		bt, ok := b.(Tuple)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !termsEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	}
	if an, ok := asInteger(a); ok {
		bn, ok := asInteger(b)
		return ok && an.Cmp(bn) == 0
	}
	return equalFallback(a, b)
}

// asInteger widens any of the codec's integer representations (native int
// kinds or *big.Int) to a *big.Int so termsEqual can compare the same
// logical value regardless of which Go type decode or a caller happened to
// use — encode canonicalizes by magnitude, not by Go type, so equality must
// too.
func asInteger(t Term) (*big.Int, bool) {
	switch v := t.(type) {
	case int:
		return big.NewInt(int64(v)), true
	case int8:
		return big.NewInt(int64(v)), true
	case int16:
		return big.NewInt(int64(v)), true
	case int32:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case uint:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint8:
		return big.NewInt(int64(v)), true
	case uint16:
		return big.NewInt(int64(v)), true
	case uint32:
		return big.NewInt(int64(v)), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	case *big.Int:
		return v, true
	default:
		return nil, false
	}
}

func equalFallback(a, b Term) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
