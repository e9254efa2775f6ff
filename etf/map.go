package etf

import "reflect"

// Map is an immutable mapping from term keys to term values. Go's built-in
// map type can't be used directly because spec.md §3 allows keys that
// aren't Go-comparable (List, *ImproperList) — so Map indexes by each key's
// canonical encoded form (the same bytes Encoder would produce for it) and
// keeps the original key/value terms alongside for iteration.
type Map struct {
	keys   []Term
	values []Term
	index  map[string]int
}

// Pair is one (key, value) entry passed to NewMap.
type Pair struct {
	Key   Term
	Value Term
}

// NewMap builds a frozen Map from explicit pairs. Later pairs with a key
// equal to an earlier one win (spec.md §4.2, "Duplicate keys: last wins").
// Every value that is a Go ordered sequence (a slice other than []byte) is
// normalized to a List recursively, per spec.md §4.3.
func NewMap(pairs ...Pair) (*Map, error) {
	m := &Map{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		if err := m.put(p.Key, normalizeValue(p.Value)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMapFromStrings builds a frozen Map whose keys are byte-string terms
// built from Go map keys — the Go analogue of spec.md §4.3's keyword-style
// construction ("keyword bindings whose names become byte-string keys").
func NewMapFromStrings(kv map[string]Term) (*Map, error) {
	m := &Map{index: make(map[string]int, len(kv))}
	for k, v := range kv {
		if err := m.put([]byte(k), normalizeValue(v)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func normalizeValue(v Term) Term {
	switch v.(type) {
	case []byte, List, *ImproperList, Tuple, *Map, nil:
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return v
	}
	out := make(List, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = normalizeValue(rv.Index(i).Interface())
	}
	return out
}

func (m *Map) put(key, value Term) error {
	enc, err := EncodeTerm(key)
	if err != nil {
		return err
	}
	k := string(enc)
	if i, ok := m.index[k]; ok {
		m.keys[i] = key
		m.values[i] = value
		return nil
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return nil
}

// Get looks up key by its canonical encoding.
func (m *Map) Get(key Term) (Term, bool) {
	enc, err := EncodeTerm(key)
	if err != nil {
		return nil, false
	}
	i, ok := m.index[string(enc)]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

func (m *Map) Len() int {
	return len(m.keys)
}

// Range visits every (key, value) pair in construction/insertion order.
// Iteration order on encode is explicitly unspecified by spec.md §9 Open
// Question (b); Range's order is an implementation detail, not a contract.
func (m *Map) Range(f func(key, value Term) bool) {
	for i := range m.keys {
		if !f(m.keys[i], m.values[i]) {
			return
		}
	}
}

func (m *Map) Equal(other *Map) bool {
	if other == nil || m.Len() != other.Len() {
		return false
	}
	for i, k := range m.keys {
		ov, ok := other.Get(k)
		if !ok || !termsEqual(m.values[i], ov) {
			return false
		}
	}
	return true
}

// Set always fails: Map is frozen after construction (spec.md §3).
func (m *Map) Set(Term, Term) error {
	return mutation("Map.Set")
}

// Delete always fails: Map is frozen after construction (spec.md §3).
func (m *Map) Delete(Term) error {
	return mutation("Map.Delete")
}

// Clear always fails: Map is frozen after construction (spec.md §3).
func (m *Map) Clear() error {
	return mutation("Map.Clear")
}
