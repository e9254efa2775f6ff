package etf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"math/big"
)

// stackFrame is one in-progress List/Tuple/Map being assembled. Using an
// explicit linked stack instead of recursive function calls keeps decode
// off the native call stack for deeply nested input — the technique
// _examples/halturin-node/etf/read.go uses ("using iterative way is
// speeding it up ... so this implementation has no recursion calls at
// all" for List/Tuple/Map nesting; Decode still recurses once per
// compressed envelope, which spec.md itself describes as recursive).
type stackFrame struct {
	parent *stackFrame

	kind     byte
	children int
	i        int

	elems  []Term // List / Tuple accumulator
	mapKey Term   // Map: pending key while waiting for its value
}

// Decode reads one ETF term from packet, starting with the mandatory
// version byte, and returns the term plus whatever bytes followed it
// (spec.md §4.2, §6).
func Decode(packet []byte) (Term, []byte, error) {
	if len(packet) == 0 {
		return nil, nil, incomplete(0)
	}
	if packet[0] != ettVersion {
		return nil, nil, malformed(0, "bad version byte")
	}
	return decodeValue(packet[1:])
}

// decodeValue decodes a single term body (no version byte) and returns the
// remaining bytes. It is the engine both Decode and the compressed-envelope
// branch use.
func decodeValue(packet []byte) (Term, []byte, error) {
	var term Term
	var stack *stackFrame

	for {
		var child *stackFrame

		if len(packet) == 0 {
			return nil, nil, incomplete(0)
		}
		tag := packet[0]
		packet = packet[1:]

		switch tag {
		case ettCompressed:
			t, rest, err := decodeCompressed(packet)
			if err != nil {
				return nil, nil, err
			}
			term, packet = t, rest

		case ettAtom:
			if len(packet) < 2 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint16(packet))
			if len(packet) < n+2 {
				return nil, nil, incomplete(tag)
			}
			term = decodeAtom(packet[2 : n+2])
			packet = packet[n+2:]

		case ettSmallInt:
			if len(packet) == 0 {
				return nil, nil, incomplete(tag)
			}
			term = int(packet[0])
			packet = packet[1:]

		case ettInt:
			if len(packet) < 4 {
				return nil, nil, incomplete(tag)
			}
			term = int64(int32(binary.BigEndian.Uint32(packet[:4])))
			packet = packet[4:]

		case ettSmallBig:
			if len(packet) < 1 {
				return nil, nil, incomplete(tag)
			}
			n := int(packet[0])
			if len(packet) < n+2 {
				return nil, nil, incomplete(tag)
			}
			negative := packet[1] == 1
			mag := append([]byte(nil), packet[2:n+2]...)
			reverseBytes(mag)
			bi := new(big.Int).SetBytes(mag)
			if negative {
				bi.Neg(bi)
			}
			term = bigToNative(bi)
			packet = packet[n+2:]

		case ettLargeBig:
			if len(packet) < 5 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint32(packet[:4]))
			if len(packet) < n+5 {
				return nil, nil, incomplete(tag)
			}
			negative := packet[4] == 1
			mag := append([]byte(nil), packet[5:n+5]...)
			reverseBytes(mag)
			bi := new(big.Int).SetBytes(mag)
			if negative {
				bi.Neg(bi)
			}
			term = bigToNative(bi)
			packet = packet[n+5:]

		case ettFloat:
			if len(packet) < 8 {
				return nil, nil, incomplete(tag)
			}
			term = math.Float64frombits(binary.BigEndian.Uint64(packet[:8]))
			packet = packet[8:]

		case ettBinary:
			if len(packet) < 4 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint32(packet[:4]))
			if len(packet) < n+4 {
				return nil, nil, incomplete(tag)
			}
			b := make([]byte, n)
			copy(b, packet[4:n+4])
			term = b
			packet = packet[n+4:]

		case ettNil:
			term = List{}

		case ettString:
			if len(packet) < 2 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint16(packet[:2]))
			if len(packet) < n+2 {
				return nil, nil, incomplete(tag)
			}
			l := make(List, n)
			for i, b := range packet[2 : n+2] {
				l[i] = int(b)
			}
			term = l
			packet = packet[n+2:]

		case ettList:
			if len(packet) < 4 {
				return nil, nil, incomplete(tag)
			}
			n := binary.BigEndian.Uint32(packet[:4])
			if n == 0 {
				return nil, nil, malformed(tag, "zero-length list must use NIL_EXT")
			}
			packet = packet[4:]
			child = &stackFrame{parent: stack, kind: ettList, children: int(n) + 1}

		case ettSmallTup:
			if len(packet) == 0 {
				return nil, nil, incomplete(tag)
			}
			n := int(packet[0])
			packet = packet[1:]
			if n == 0 {
				term = Tuple{}
				break
			}
			child = &stackFrame{parent: stack, kind: ettSmallTup, children: n}

		case ettLargeTup:
			if len(packet) < 4 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint32(packet[:4]))
			packet = packet[4:]
			if n == 0 {
				term = Tuple{}
				break
			}
			child = &stackFrame{parent: stack, kind: ettLargeTup, children: n}

		case ettMap:
			if len(packet) < 4 {
				return nil, nil, incomplete(tag)
			}
			n := int(binary.BigEndian.Uint32(packet[:4]))
			packet = packet[4:]
			if n == 0 {
				m, _ := NewMap()
				term = m
				break
			}
			child = &stackFrame{parent: stack, kind: ettMap, children: n * 2}

		default:
			return nil, nil, malformed(tag, "unknown tag")
		}

		if stack == nil && child == nil {
			break
		}
		if child != nil {
			stack = child
			continue
		}

	processStack:
		switch stack.kind {
		case ettList:
			stack.elems = append(stack.elems, term)
			stack.i++
			if stack.i == stack.children {
				if tail, ok := term.(List); ok && len(tail) == 0 {
					stack.elems = stack.elems[:len(stack.elems)-1]
					term = List(stack.elems)
				} else {
					term = newImproperListDecoded(stack.elems[:len(stack.elems)-1], term)
				}
			}

		case ettSmallTup, ettLargeTup:
			stack.elems = append(stack.elems, term)
			stack.i++
			if stack.i == stack.children {
				term = Tuple(stack.elems)
				if t, ok := asOpaqueTuple(term.(Tuple)); ok {
					decoded, err := decodeOpaque(t.language, t.data)
					if err != nil {
						return nil, nil, err
					}
					term = decoded
				}
			}

		case ettMap:
			if stack.i&1 == 1 {
				stack.elems = append(stack.elems, stack.mapKey, term)
				stack.i++
			} else {
				stack.mapKey = term
				stack.i++
			}
			if stack.i == stack.children {
				pairs := make([]Pair, 0, len(stack.elems)/2)
				for j := 0; j+1 < len(stack.elems); j += 2 {
					pairs = append(pairs, Pair{Key: stack.elems[j], Value: stack.elems[j+1]})
				}
				m, err := NewMap(pairs...)
				if err != nil {
					return nil, nil, err
				}
				term = m
			}

		default:
			return nil, nil, &DecodeError{Msg: "internal: unknown stack frame"}
		}

		if stack.i < stack.children {
			continue
		}

		if stack.parent == nil {
			break
		}
		stack, stack.parent = stack.parent, nil
		goto processStack
	}

	return term, packet, nil
}

func decodeAtom(name []byte) Term {
	switch string(name) {
	case atomTrue:
		return true
	case atomFalse:
		return false
	case atomUndefined:
		return nil
	default:
		return registry.intern(string(name))
	}
}

type opaqueTuple struct {
	language Atom
	data     []byte
}

func asOpaqueTuple(t Tuple) (opaqueTuple, bool) {
	if len(t) != 3 {
		return opaqueTuple{}, false
	}
	marker, ok := t[0].(Atom)
	if !ok || marker != opaqueMarkerAtom {
		return opaqueTuple{}, false
	}
	lang, ok := t[1].(Atom)
	if !ok {
		return opaqueTuple{}, false
	}
	data, ok := t[2].([]byte)
	if !ok {
		return opaqueTuple{}, false
	}
	return opaqueTuple{language: lang, data: data}, true
}

// bigToNative narrows a decoded SMALL_BIG_EXT/LARGE_BIG_EXT magnitude to a
// native int64 when it fits, matching appendInt's own canonical-tag choice
// so that decode(encode(n)) returns the same Go type n started as. Values
// outside int64 range stay a *big.Int (spec.md §3's arbitrary-precision
// Integer).
func bigToNative(bi *big.Int) Term {
	if bi.IsInt64() {
		return bi.Int64()
	}
	return bi
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// decodeCompressed handles the 'P' envelope (spec.md §4.6): a u32
// uncompressed length followed by a zlib/deflate stream whose inflated
// content is, itself, one term body with no leading version byte.
func decodeCompressed(packet []byte) (Term, []byte, error) {
	if len(packet) < 4 {
		return nil, nil, incomplete(ettCompressed)
	}
	n := binary.BigEndian.Uint32(packet[:4])
	packet = packet[4:]

	br := bytes.NewReader(packet)
	zr, err := zlib.NewReader(br)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil, incomplete(ettCompressed)
		}
		return nil, nil, malformed(ettCompressed, "invalid deflate stream")
	}
	inflated := make([]byte, n)
	if _, err := io.ReadFull(zr, inflated); err != nil {
		return nil, nil, malformed(ettCompressed, "inflated length mismatch")
	}
	// Drain one more byte to force the trailing Adler-32 checksum read so
	// br.Len() reflects exactly how many compressed bytes this stream used.
	var scratch [1]byte
	if _, err := zr.Read(scratch[:]); err != io.EOF {
		return nil, nil, malformed(ettCompressed, "inflated length mismatch")
	}
	consumed := len(packet) - br.Len()
	tail := packet[consumed:]

	term, rest, err := decodeValue(inflated)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, malformed(ettCompressed, "trailing bytes inside compressed envelope")
	}
	return term, tail, nil
}
