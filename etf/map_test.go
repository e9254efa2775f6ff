package etf

import "testing"

func TestNewMapDuplicateKeyLastWins(t *testing.T) {
	m, err := NewMap(
		Pair{Key: []byte("k"), Value: 1},
		Pair{Key: []byte("k"), Value: 2},
	)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	v, ok := m.Get([]byte("k"))
	if !ok || v != 2 {
		t.Fatalf("Get() = (%v, %v), want (2, true)", v, ok)
	}
}

func TestNewMapListKey(t *testing.T) {
	key := List{1, 2, 3}
	m, err := NewMap(Pair{Key: key, Value: "found"})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	v, ok := m.Get(List{1, 2, 3})
	if !ok || v != "found" {
		t.Fatalf("Get() = (%v, %v), want (found, true)", v, ok)
	}
}

func TestNewMapFromStrings(t *testing.T) {
	m, err := NewMapFromStrings(map[string]Term{"a": 1})
	if err != nil {
		t.Fatalf("NewMapFromStrings: %v", err)
	}
	v, ok := m.Get([]byte("a"))
	if !ok || v != 1 {
		t.Fatalf("Get() = (%v, %v), want (1, true)", v, ok)
	}
}

func TestNewMapNormalizesSlices(t *testing.T) {
	m, err := NewMap(Pair{Key: []byte("k"), Value: []int{1, 2, 3}})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	v, _ := m.Get([]byte("k"))
	l, ok := v.(List)
	if !ok || len(l) != 3 {
		t.Fatalf("Get() = %#v, want a 3-element List", v)
	}
}

func TestMapIsFrozen(t *testing.T) {
	m, _ := NewMap()
	if err := m.Set("k", "v"); err == nil {
		t.Fatal("expected MutationError from Set")
	} else if _, ok := err.(*MutationError); !ok {
		t.Fatalf("got %T, want *MutationError", err)
	}
	if err := m.Delete("k"); err == nil {
		t.Fatal("expected MutationError from Delete")
	}
	if err := m.Clear(); err == nil {
		t.Fatal("expected MutationError from Clear")
	}
}

func TestMapEqual(t *testing.T) {
	a, _ := NewMap(Pair{Key: []byte("k"), Value: 1})
	b, _ := NewMap(Pair{Key: []byte("k"), Value: 1})
	c, _ := NewMap(Pair{Key: []byte("k"), Value: 2})
	if !a.Equal(b) {
		t.Fatal("expected a and b to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected a and c to differ")
	}
}
