package etf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeCompressedEnvelopeHeader(t *testing.T) {
	// A long run of identical elements (here: 5000 empty lists, each a
	// single 'j' NIL_EXT byte) deflates to a small fraction of its
	// uncompressed size under any conforming implementation, so the 'P'
	// envelope header is unambiguously worth it regardless of the exact
	// deflate byte output (unlike a short list, whose zlib header/checksum
	// overhead can outweigh the saving — see
	// TestEncodeSkipsCompressionWhenNotBeneficial).
	const n = 5000
	l := make(List, n)
	for i := range l {
		l[i] = List{}
	}
	body, err := EncodeTerm(l)
	if err != nil {
		t.Fatalf("EncodeTerm: %v", err)
	}
	got, err := Encode(l, DefaultCompress)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	wantHeader := append([]byte{0x83, 'P'}, lenBuf[:]...)
	if !bytes.Equal(got[:6], wantHeader) {
		t.Fatalf("header = % x, want % x", got[:6], wantHeader)
	}
	if len(got) >= len(body)+1 {
		t.Fatalf("compressed size %d not smaller than plain size %d", len(got), len(body)+1)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	term := List{1, Atom("two"), []byte("three"), List{}}
	encoded, err := Encode(term, DefaultCompress)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, rest, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %x, want empty", rest)
	}
	if !termsEqual(term, decoded) {
		t.Fatalf("got %#v, want %#v", decoded, term)
	}
}

func TestCompressedEnvelopePreservesTail(t *testing.T) {
	encoded, err := Encode(Atom("ok"), DefaultCompress)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tail := []byte("trailing-bytes")
	decoded, rest, err := Decode(append(encoded, tail...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != Atom("ok") {
		t.Fatalf("decoded = %#v, want Atom(ok)", decoded)
	}
	if !bytes.Equal(rest, tail) {
		t.Fatalf("rest = %q, want %q", rest, tail)
	}
}

func TestDecodeCompressedEmptyStreamIsIncomplete(t *testing.T) {
	// decode(b"\x83P\x00\x00\x00\x00") — a zero-length declared payload with
	// zero actual deflate bytes following — is IncompleteData, not malformed.
	packet := []byte{0x83, 'P', 0x00, 0x00, 0x00, 0x00}
	if _, _, err := Decode(packet); err == nil {
		t.Fatal("expected IncompleteDataError")
	} else if _, ok := err.(*IncompleteDataError); !ok {
		t.Fatalf("got %T, want *IncompleteDataError", err)
	}
}

func TestDecodeCompressedBadZlibHeaderIsDecodeError(t *testing.T) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 1)
	packet := append([]byte{0x83, 'P'}, lenBuf[:]...)
	packet = append(packet, 0xff, 0xff, 0xff, 0xff)
	if _, _, err := Decode(packet); err == nil {
		t.Fatal("expected DecodeError for a malformed zlib header")
	} else if _, ok := err.(*DecodeError); !ok {
		t.Fatalf("got %T, want *DecodeError", err)
	}
}

func TestCompressLevelZeroBehavesLikeNoCompress(t *testing.T) {
	got, err := Encode(Atom("ok"), CompressLevel(0))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want, err := Encode(Atom("ok"), NoCompress)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}
