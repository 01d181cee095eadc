package project

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// MaxDecodedBytes caps the size of a decompressed project document.
const MaxDecodedBytes = 1 << 30

var gzipMagic = []byte{0x1f, 0x8b}

// Decode turns raw project bytes into a plain XML document. Gzip input is
// inflated; otherwise any leading junk before the XML prolog is dropped.
func Decode(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, malformed("empty input", nil)
	}

	if bytes.HasPrefix(raw, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, malformed("invalid gzip header", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(io.LimitReader(zr, MaxDecodedBytes+1))
		if err != nil {
			return nil, malformed("corrupt gzip stream", err)
		}
		if len(out) > MaxDecodedBytes {
			return nil, malformed(fmt.Sprintf("decompressed document exceeds %d bytes", MaxDecodedBytes), nil)
		}
		raw = out
	}

	start := bytes.Index(raw, []byte("<?xml"))
	if start == -1 {
		start = bytes.IndexByte(raw, '<')
	}
	if start == -1 {
		return nil, malformed("no XML content found", nil)
	}
	return raw[start:], nil
}
