package etf

import (
	"bytes"
	"compress/zlib"
)

// wrapCompressed deflates body and wraps it in the 'P' envelope: version
// byte, 'P', u32 uncompressed length, deflate stream (spec.md §4.6).
func wrapCompressed(body []byte, level int) ([]byte, error) {
	var out bytes.Buffer
	out.WriteByte(ettVersion)
	out.WriteByte(ettCompressed)
	out.Write(appendU32(nil, uint32(len(body))))

	zw, err := zlib.NewWriterLevel(&out, level)
	if err != nil {
		return nil, encodeErr("invalid compression level %d: %s", level, err)
	}
	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
