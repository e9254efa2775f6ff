package etf

import (
	"fmt"
	"sync"
)

// maxAtomLength is the 255-byte name ceiling spec.md §3 imposes on atoms.
const maxAtomLength = 255

// Atom is an interned Erlang atom name. Two Atoms built from equal bytes
// compare equal (Go string equality already gives us that) and, since the
// registry hands out a single *atom per name, also share identity for
// callers that care to compare pointers obtained from Lookup.
type Atom string

// atomRegistry is the process-wide interning table. It is append-only:
// entries are never evicted for the lifetime of the process, matching
// spec.md §5 ("Entries are never evicted in the specified lifetime") and
// the Non-goal that excludes the atom-cache eviction extension — see
// DESIGN.md for why this rules out an LRU-backed implementation.
type atomRegistry struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

var registry = &atomRegistry{names: make(map[string]struct{})}

func (r *atomRegistry) intern(name string) Atom {
	r.mu.RLock()
	_, ok := r.names[name]
	r.mu.RUnlock()
	if ok {
		return Atom(name)
	}

	r.mu.Lock()
	r.names[name] = struct{}{}
	r.mu.Unlock()
	return Atom(name)
}

// NewAtom interns name and returns the Atom value for it. A byte string
// longer than 255 bytes is a ValueError; NewAtom never rejects the empty
// name.
func NewAtom(name []byte) (Atom, error) {
	if len(name) > maxAtomLength {
		return "", valueErr("atom name exceeds %d bytes (%d given)", maxAtomLength, len(name))
	}
	return registry.intern(string(name)), nil
}

// NewAtomFrom mirrors Atom(existing) in spec.md §4.7: constructing from an
// Atom already in the registry returns the very same value.
func NewAtomFrom(a Atom) Atom {
	return registry.intern(string(a))
}

func (a Atom) String() string {
	return string(a)
}

// GoString renders the way spec.md §4.7 requires: `Atom(b'<name>')`.
func (a Atom) GoString() string {
	return fmt.Sprintf("Atom(b'%s')", string(a))
}
