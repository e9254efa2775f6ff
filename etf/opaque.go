package etf

import (
	"bytes"
	"encoding/gob"
	"reflect"
	"sync"
)

// HostLanguage is the atom this codec's host identifies itself with in the
// opaque marker tuple (spec.md §4.5). erlport's Python bridge used
// "python"; ours is Go's analogue.
const HostLanguage = Atom("go")

var opaqueMarkerAtom = registry.intern(OpaqueMarker)

// OpaqueObject carries a foreign-language value crossing the ETF boundary:
// the reserved 3-tuple {'$erlport.opaque', Language, Data} (spec.md §3,
// §4.5).
type OpaqueObject struct {
	Data     []byte
	Language Atom
}

// NewOpaqueObject constructs an OpaqueObject. Go's static typing already
// enforces spec.md §3's "data must be a byte string; language must be an
// Atom" at the call site — there's no dynamically-typed call path into this
// constructor the way there is in erlport's Python, so no runtime TypeError
// check is needed here (see DESIGN.md).
func NewOpaqueObject(data []byte, language Atom) *OpaqueObject {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &OpaqueObject{Data: cp, Language: language}
}

// Equal reports structural equality over (Data, Language).
func (o *OpaqueObject) Equal(other *OpaqueObject) bool {
	return other != nil && o.Language == other.Language && bytes.Equal(o.Data, other.Data)
}

// Encode emits the bytes this object contributes to an ETF stream (spec.md
// §4.4): verbatim data (itself a full ETF payload, version byte included)
// when Language is "erlang", otherwise the canonical opaque 3-tuple.
func (o *OpaqueObject) Encode() ([]byte, error) {
	if o.Language == "erlang" {
		cp := make([]byte, len(o.Data))
		copy(cp, o.Data)
		return cp, nil
	}
	tuple := Tuple{opaqueMarkerAtom, o.Language, o.Data}
	return EncodeTerm(tuple)
}

var hostCodecs = struct {
	mu  sync.RWMutex
	reg map[Atom]hostCodec
}{reg: make(map[Atom]hostCodec)}

type hostCodec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte) (any, error)
}

func init() {
	RegisterHostCodec(HostLanguage, gobMarshal, gobUnmarshal)
}

// RegisterHostCodec installs a (marshal, unmarshal) pair for a host
// language atom, extending the opaque bridge (spec.md §4.5) beyond the
// built-in "go" gob codec. Re-registering a language atom replaces its
// codec.
func RegisterHostCodec(language Atom, marshal func(any) ([]byte, error), unmarshal func([]byte) (any, error)) {
	hostCodecs.mu.Lock()
	defer hostCodecs.mu.Unlock()
	hostCodecs.reg[language] = hostCodec{marshal: marshal, unmarshal: unmarshal}
}

func lookupHostCodec(language Atom) (hostCodec, bool) {
	hostCodecs.mu.RLock()
	defer hostCodecs.mu.RUnlock()
	c, ok := hostCodecs.reg[language]
	return c, ok
}

func gobMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobUnmarshal(data []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeOpaque re-interprets a 3-tuple whose first element is the opaque
// marker atom (spec.md §4.5): if the language matches a registered host
// codec, the data is unmarshaled and the resulting host value is returned
// directly; otherwise an OpaqueObject carrier is returned for the caller to
// forward untouched.
func decodeOpaque(language Atom, data []byte) (Term, error) {
	if codec, ok := lookupHostCodec(language); ok {
		v, err := codec.unmarshal(data)
		if err != nil {
			return nil, malformed(ettSmallTup, "opaque payload for host language "+string(language)+": "+err.Error())
		}
		return v, nil
	}
	return NewOpaqueObject(data, language), nil
}

// encodeForeign serializes a Go value this codec has no native ETF mapping
// for, through the "go" host codec, and wraps it in the opaque marker
// tuple (spec.md §4.4, "Foreign host value").
func encodeForeign(v Term) ([]byte, error) {
	codec, _ := lookupHostCodec(HostLanguage)
	data, err := codec.marshal(v)
	if err != nil {
		return nil, encodeErr("value of type %s has no ETF representation and is not gob-serializable: %s", reflect.TypeOf(v), err)
	}
	tuple := Tuple{opaqueMarkerAtom, HostLanguage, data}
	return EncodeTerm(tuple)
}
