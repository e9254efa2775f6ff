package etf

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func TestOpaqueObjectEncodeErlangIsVerbatim(t *testing.T) {
	o := NewOpaqueObject([]byte("data"), "erlang")
	got, err := o.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, []byte("data")) {
		t.Fatalf("Encode() = %x, want verbatim %x", got, []byte("data"))
	}
}

func TestOpaqueObjectEncodeForeignLanguageWrapsMarker(t *testing.T) {
	o := NewOpaqueObject([]byte("data"), Atom("language"))
	body, err := o.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	term, rest, err := decodeValue(body)
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %x", rest)
	}
	decoded, ok := term.(*OpaqueObject)
	if !ok {
		t.Fatalf("got %#v, want *OpaqueObject", term)
	}
	if !decoded.Equal(o) {
		t.Fatalf("round trip mismatch: got %#v, want %#v", decoded, o)
	}
}

func TestDecodeOpaqueMatchesScenario(t *testing.T) {
	// decode(b"\x83h\x03d\x00\x0f$erlport.opaqued\x00\x08languagem\x00\x00\x00\x04data")
	// yields an OpaqueObject with data=b"data", language=Atom(b"language").
	packet := []byte{
		0x83,
		'h', 0x03,
		'd', 0x00, 0x0f, '$', 'e', 'r', 'l', 'p', 'o', 'r', 't', '.', 'o', 'p', 'a', 'q', 'u', 'e',
		'd', 0x00, 0x08, 'l', 'a', 'n', 'g', 'u', 'a', 'g', 'e',
		'm', 0x00, 0x00, 0x00, 0x04, 'd', 'a', 't', 'a',
	}
	term, rest, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %x", rest)
	}
	o, ok := term.(*OpaqueObject)
	if !ok {
		t.Fatalf("got %#v, want *OpaqueObject", term)
	}
	if string(o.Data) != "data" || o.Language != Atom("language") {
		t.Fatalf("got data=%q language=%v", o.Data, o.Language)
	}
}

type opaqueTestPayload struct {
	Name  string
	Count int
}

func init() {
	gob.Register(opaqueTestPayload{})
}

func TestEncodeForeignGoValueRoundTrips(t *testing.T) {
	payload := opaqueTestPayload{Name: "x", Count: 3}
	encoded, err := Encode(payload, NoCompress)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	term, rest, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %x", rest)
	}
	got, ok := term.(opaqueTestPayload)
	if !ok {
		t.Fatalf("got %#v (%T), want opaqueTestPayload", term, term)
	}
	if got != payload {
		t.Fatalf("got %#v, want %#v", got, payload)
	}
}

func TestRegisterHostCodecOverridesBuiltin(t *testing.T) {
	const lang = Atom("reverse-text")
	RegisterHostCodec(lang,
		func(v any) ([]byte, error) {
			s := v.(string)
			b := []byte(s)
			for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
				b[i], b[j] = b[j], b[i]
			}
			return b, nil
		},
		func(data []byte) (any, error) {
			b := make([]byte, len(data))
			copy(b, data)
			for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
				b[i], b[j] = b[j], b[i]
			}
			return string(b), nil
		},
	)
	decoded, err := decodeOpaque(lang, []byte("dlrow"))
	if err != nil {
		t.Fatalf("decodeOpaque: %v", err)
	}
	if decoded != "world" {
		t.Fatalf("decodeOpaque() = %v, want world", decoded)
	}
}
