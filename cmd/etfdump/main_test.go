package main

import (
	"strings"
	"testing"

	"github.com/op/go-logging"

	"github.com/erlbridge/etf/etf"
)

func TestTrimHexStripsWhitespace(t *testing.T) {
	got := trimHex([]byte("83 68 01\n6d\t00000000"))
	want := "8368016d00000000"
	if string(got) != want {
		t.Fatalf("trimHex() = %q, want %q", got, want)
	}
}

func TestFormatTermRendersAtomScenario(t *testing.T) {
	// Mirrors spec.md §8 scenario 1: decode(b"\x83d\x00\x04test").
	packet := []byte{0x83, 'd', 0x00, 0x04, 't', 'e', 's', 't'}
	term, rest, err := etf.Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %x, want empty", rest)
	}
	out := formatTerm(term)
	if !strings.Contains(out, "test") {
		t.Fatalf("formatTerm(%#v) = %q, want it to mention the atom name", term, out)
	}
}

func TestFormatTermRendersTuple(t *testing.T) {
	term := etf.Tuple{etf.Atom("ok"), 1}
	out := formatTerm(term)
	if !strings.Contains(out, "Atom(b'ok')") {
		t.Fatalf("formatTerm(%#v) = %q, want it to contain the atom dump", term, out)
	}
}

func TestDecodeErrLevelDistinguishesIncompleteFromMalformed(t *testing.T) {
	if got := decodeErrLevel(&etf.IncompleteDataError{}); got != logging.NOTICE {
		t.Fatalf("decodeErrLevel(IncompleteDataError) = %v, want NOTICE", got)
	}
	if got := decodeErrLevel(&etf.DecodeError{}); got != logging.ERROR {
		t.Fatalf("decodeErrLevel(DecodeError) = %v, want ERROR", got)
	}
}
