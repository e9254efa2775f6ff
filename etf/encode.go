package etf

import (
	"encoding/binary"
	"math"
	"math/big"
)

// Compress selects the deflate envelope behavior for Encode (spec.md §4.6):
// Off never wraps the output, On uses the default level 6, and any Level
// value 0..9 picks that zlib level (0 disables compression, same as Off).
type Compress struct {
	enabled bool
	level   int
}

// NoCompress is the default: emit the term body uncompressed.
var NoCompress = Compress{}

// DefaultCompress wraps the output with deflate level 6.
var DefaultCompress = Compress{enabled: true, level: 6}

// CompressLevel picks an explicit zlib level 0..9. Level 0 behaves like
// NoCompress.
func CompressLevel(level int) Compress {
	if level <= 0 {
		return Compress{}
	}
	return Compress{enabled: true, level: level}
}

// Encode emits the version byte followed by term's canonical ETF encoding,
// optionally wrapped in the 'P' deflate envelope (spec.md §4.4, §4.6).
func Encode(term Term, compress Compress) ([]byte, error) {
	body, err := EncodeTerm(term)
	if err != nil {
		return nil, err
	}
	plain := append([]byte{ettVersion}, body...)
	if !compress.enabled {
		return plain, nil
	}
	wrapped, err := wrapCompressed(body, compress.level)
	if err != nil {
		return nil, err
	}
	// erlport only keeps the 'P' envelope when it actually shrinks the
	// payload (_examples/original_source/priv/python3/erlport/tests/
	// erlterms_tests.py's test_encode_compressed_term) — a small or
	// already-dense body can come out larger once deflate's own header
	// and checksum overhead are added.
	if len(wrapped) >= len(plain) {
		return plain, nil
	}
	return wrapped, nil
}

// EncodeTerm emits a term's body without the leading version byte
// (spec.md §6) — used directly by OpaqueObject.Encode and by the
// host-opaque bridge when nesting a tuple.
func EncodeTerm(term Term) ([]byte, error) {
	var buf []byte
	buf, err := appendTerm(buf, term)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func appendTerm(buf []byte, term Term) ([]byte, error) {
	switch v := term.(type) {
	case nil:
		return appendAtomName(buf, atomUndefined), nil
	case bool:
		if v {
			return appendAtomName(buf, atomTrue), nil
		}
		return appendAtomName(buf, atomFalse), nil
	case Atom:
		return appendAtomName(buf, string(v)), nil

	case int:
		return appendInt(buf, int64(v))
	case int8:
		return appendInt(buf, int64(v))
	case int16:
		return appendInt(buf, int64(v))
	case int32:
		return appendInt(buf, int64(v))
	case int64:
		return appendInt(buf, v)
	case uint:
		return appendBigUint(buf, uint64(v))
	case uint8:
		return appendInt(buf, int64(v))
	case uint16:
		return appendInt(buf, int64(v))
	case uint32:
		return appendInt(buf, int64(v))
	case uint64:
		return appendBigUint(buf, v)
	case *big.Int:
		return appendBigInt(buf, v)

	case float32:
		return appendFloat(buf, float64(v))
	case float64:
		return appendFloat(buf, v)

	case []byte:
		return appendBinary(buf, v), nil

	case string:
		return appendText(buf, v)

	case Tuple:
		return appendTuple(buf, v)

	case List:
		return appendList(buf, v)

	case *ImproperList:
		return appendImproperList(buf, v)

	case *Map:
		return appendMap(buf, v)

	case *OpaqueObject:
		data, err := v.Encode()
		if err != nil {
			return nil, err
		}
		return append(buf, data...), nil

	default:
		data, err := encodeForeign(term)
		if err != nil {
			return nil, err
		}
		return append(buf, data...), nil
	}
}

func appendAtomName(buf []byte, name string) []byte {
	buf = append(buf, ettAtom)
	buf = appendU16(buf, uint16(len(name)))
	return append(buf, name...)
}

// appendInt picks the narrowest canonical integer tag (spec.md §4.4).
func appendInt(buf []byte, n int64) ([]byte, error) {
	if n >= 0 && n <= 255 {
		return append(buf, ettSmallInt, byte(n)), nil
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		buf = append(buf, ettInt)
		return appendU32(buf, uint32(int32(n))), nil
	}
	negative := n < 0
	mag := new(big.Int).Abs(big.NewInt(n)).Bytes()
	reverseBytes(mag)
	return appendBigMagnitude(buf, negative, mag), nil
}

func appendBigUint(buf []byte, n uint64) ([]byte, error) {
	if n <= 255 {
		return append(buf, ettSmallInt, byte(n)), nil
	}
	if n <= math.MaxInt32 {
		buf = append(buf, ettInt)
		return appendU32(buf, uint32(n)), nil
	}
	return appendBigInt(buf, new(big.Int).SetUint64(n))
}

// appendBigInt handles *big.Int term values; canonical tag selection still
// follows the value's magnitude, not its Go representation, so a *big.Int
// holding a small value still picks 'a'/'b' (spec.md §4.4).
func appendBigInt(buf []byte, bi *big.Int) ([]byte, error) {
	if bi.IsInt64() {
		return appendInt(buf, bi.Int64())
	}
	negative := bi.Sign() < 0
	mag := new(big.Int).Abs(bi).Bytes() // big-endian, minimal
	reverseBytes(mag)                   // -> little-endian for the wire
	return appendBigMagnitude(buf, negative, mag), nil
}

// appendBigMagnitude emits the SMALL_BIG_EXT/LARGE_BIG_EXT body for a value
// already known not to fit 'a' or 'b'. mag is little-endian, minimal length
// (zero encodes as arity 0).
func appendBigMagnitude(buf []byte, negative bool, mag []byte) []byte {
	sign := byte(0)
	if negative {
		sign = 1
	}
	if len(mag) <= 255 {
		buf = append(buf, ettSmallBig, byte(len(mag)), sign)
		return append(buf, mag...)
	}
	buf = append(buf, ettLargeBig)
	buf = appendU32(buf, uint32(len(mag)))
	buf = append(buf, sign)
	return append(buf, mag...)
}

func appendFloat(buf []byte, f float64) ([]byte, error) {
	buf = append(buf, ettFloat)
	return appendU64(buf, math.Float64bits(f)), nil
}

func appendBinary(buf []byte, b []byte) []byte {
	buf = append(buf, ettBinary)
	buf = appendU32(buf, uint32(len(b)))
	return append(buf, b...)
}

// appendText applies spec.md §4.4's text-string rules: empty -> nil,
// all code points <= 255 and length <= 65535 -> STRING_EXT, else a generic
// list of integers terminated by nil.
func appendText(buf []byte, s string) ([]byte, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return append(buf, ettNil), nil
	}
	allByte := len(runes) <= 0xFFFF
	if allByte {
		for _, r := range runes {
			if r > 255 {
				allByte = false
				break
			}
		}
	}
	if allByte {
		buf = append(buf, ettString)
		buf = appendU16(buf, uint16(len(runes)))
		for _, r := range runes {
			buf = append(buf, byte(r))
		}
		return buf, nil
	}

	buf = append(buf, ettList)
	buf = appendU32(buf, uint32(len(runes)))
	var err error
	for _, r := range runes {
		buf, err = appendInt(buf, int64(r))
		if err != nil {
			return nil, err
		}
	}
	return append(buf, ettNil), nil
}

func appendTuple(buf []byte, t Tuple) ([]byte, error) {
	if len(t) <= 255 {
		buf = append(buf, ettSmallTup, byte(len(t)))
	} else {
		buf = append(buf, ettLargeTup)
		buf = appendU32(buf, uint32(len(t)))
	}
	var err error
	for _, el := range t {
		buf, err = appendTerm(buf, el)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// appendList applies spec.md §4.4: empty -> nil, byte-range integers within
// the 65535 length ceiling -> STRING_EXT, else LIST_EXT + nil terminator.
func appendList(buf []byte, l List) ([]byte, error) {
	if len(l) == 0 {
		return append(buf, ettNil), nil
	}
	if bytes, ok := asByteList(l); ok {
		buf = append(buf, ettString)
		buf = appendU16(buf, uint16(len(l)))
		return append(buf, bytes...), nil
	}
	buf = append(buf, ettList)
	buf = appendU32(buf, uint32(len(l)))
	var err error
	for _, el := range l {
		buf, err = appendTerm(buf, el)
		if err != nil {
			return nil, err
		}
	}
	return append(buf, ettNil), nil
}

// asByteList reports whether every element of l is an integer in 0..255,
// widening across all of the codec's integer representations the same way
// asInteger does (etf/list.go) — canonical tag selection must follow a
// value's magnitude, not which Go integer type happened to hold it.
func asByteList(l List) ([]byte, bool) {
	if len(l) > 0xFFFF {
		return nil, false
	}
	out := make([]byte, len(l))
	for i, el := range l {
		n, ok := asInteger(el)
		if !ok || n.Sign() < 0 || n.Cmp(big.NewInt(255)) > 0 {
			return nil, false
		}
		out[i] = byte(n.Int64())
	}
	return out, true
}

func appendImproperList(buf []byte, l *ImproperList) ([]byte, error) {
	elems := l.Elements()
	buf = append(buf, ettList)
	buf = appendU32(buf, uint32(len(elems)))
	var err error
	for _, el := range elems {
		buf, err = appendTerm(buf, el)
		if err != nil {
			return nil, err
		}
	}
	return appendTerm(buf, l.Tail())
}

func appendMap(buf []byte, m *Map) ([]byte, error) {
	buf = append(buf, ettMap)
	buf = appendU32(buf, uint32(m.Len()))
	var err error
	m.Range(func(k, v Term) bool {
		buf, err = appendTerm(buf, k)
		if err != nil {
			return false
		}
		buf, err = appendTerm(buf, v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
