// Package bounded enforces an exact byte count on a stream.
package bounded

import (
	"fmt"
	"io"

	"github.com/agenthands/gitcas/pkg/core"
)

// Reader yields exactly size bytes from r. Reads that would go past size fail
// with core.ErrSizeMismatch instead of truncating. A source that ends early is
// reported through CheckComplete.
type Reader struct {
	r         io.Reader
	size      int64
	remaining int64
}

func NewReader(r io.Reader, size int64) *Reader {
	return &Reader{r: r, size: size, remaining: size}
}

// Read implements io.Reader. It asks the source for at most remaining+1 bytes
// so that overruns are seen in the call that causes them.
func (b *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining+1]
	}
	n, err := b.r.Read(p)
	if int64(n) > b.remaining {
		if b.remaining == 0 {
			return 0, fmt.Errorf("%w: trailing data after the declared %d bytes", core.ErrSizeMismatch, b.size)
		}
		return 0, fmt.Errorf("%w: limit exceeded: stream is longer than the declared %d bytes", core.ErrSizeMismatch, b.size)
	}
	b.remaining -= int64(n)
	return n, err
}

// Remaining reports how many declared bytes have not been yielded yet.
func (b *Reader) Remaining() int64 {
	return b.remaining
}

// Size returns the declared size.
func (b *Reader) Size() int64 {
	return b.size
}

// CheckComplete returns a short read error unless all size bytes were yielded.
func (b *Reader) CheckComplete() error {
	if b.remaining == 0 {
		return nil
	}
	return fmt.Errorf("%w: short read: expected %d bytes, got %d", core.ErrSizeMismatch, b.size, b.size-b.remaining)
}
