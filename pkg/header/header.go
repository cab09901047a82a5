// Package header encodes and decodes the "<kind> <size>\x00" prefix that
// precedes object content, both on disk (inside the compressed stream) and in
// the bytes that are hashed to name the object.
package header

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/agenthands/gitcas/pkg/core"
)

// MaxLen bounds the search for the NUL terminator. The longest valid header
// ("blob " plus a 19 digit size plus NUL) is well inside it.
const MaxLen = 64

// Header describes the content that follows it.
type Header struct {
	Kind core.Kind
	Size int64 // uncompressed content length
}

func (h Header) String() string {
	return fmt.Sprintf("%s %d", h.Kind, h.Size)
}

// Bytes returns the encoded form of h.
func (h Header) Bytes() []byte {
	return Encode(h.Kind, h.Size)
}

// Encode returns kind + " " + decimal(size) + "\x00".
func Encode(kind core.Kind, size int64) []byte {
	b := make([]byte, 0, len(kind)+21)
	b = append(b, kind...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, size, 10)
	return append(b, 0)
}

// Decode parses the header at the start of b and returns it together with the
// offset of the first content byte.
func Decode(b []byte) (Header, int, error) {
	window := b
	if len(window) > MaxLen {
		window = window[:MaxLen]
	}
	nul := bytes.IndexByte(window, 0)
	if nul < 0 {
		return Header{}, 0, fmt.Errorf("%w: truncated header: no NUL in first %d bytes", core.ErrCorrupt, len(window))
	}
	h, err := parse(b[:nul])
	if err != nil {
		return Header{}, 0, err
	}
	return h, nul + 1, nil
}

// Read consumes one header from r, reading at most MaxLen bytes. Errors from r
// other than io.EOF are returned unchanged.
func Read(r io.ByteReader) (Header, error) {
	var buf [MaxLen]byte
	for i := 0; i < MaxLen; i++ {
		c, err := r.ReadByte()
		if err == io.EOF {
			return Header{}, fmt.Errorf("%w: truncated header: stream ended after %d bytes without NUL", core.ErrCorrupt, i)
		}
		if err != nil {
			return Header{}, err
		}
		if c == 0 {
			return parse(buf[:i])
		}
		buf[i] = c
	}
	return Header{}, fmt.Errorf("%w: truncated header: no NUL in first %d bytes", core.ErrCorrupt, MaxLen)
}

func parse(field []byte) (Header, error) {
	sp := bytes.IndexByte(field, ' ')
	if sp < 0 {
		return Header{}, fmt.Errorf("%w: header %q has no space separator", core.ErrCorrupt, field)
	}
	kind, err := core.ParseKind(string(field[:sp]))
	if err != nil {
		return Header{}, err
	}
	size, err := parseSize(field[sp+1:])
	if err != nil {
		return Header{}, err
	}
	return Header{Kind: kind, Size: size}, nil
}

func parseSize(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: bad size: empty", core.ErrCorrupt)
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: bad size %q", core.ErrCorrupt, b)
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w: bad size %q: overflow", core.ErrCorrupt, b)
		}
		n = n*10 + d
	}
	return n, nil
}
