// Package hashing folds the bytes flowing through a stream into the SHA-1
// digest that names an object.
package hashing

import (
	"crypto/sha1"
	"hash"
	"io"

	"github.com/agenthands/gitcas/pkg/core"
)

// Writer forwards writes to an inner sink and hashes exactly the bytes the
// sink accepted.
type Writer struct {
	w io.Writer
	h hash.Hash
	n int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: sha1.New()}
}

// Write implements io.Writer.
func (hw *Writer) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	if n > 0 {
		_, _ = hw.h.Write(p[:n]) // hash writes never fail
		hw.n += int64(n)
	}
	return n, err
}

// Count returns the number of bytes hashed so far.
func (hw *Writer) Count() int64 {
	return hw.n
}

// Sum returns the digest of everything written. Call it once the stream is
// complete.
func (hw *Writer) Sum() core.Hash {
	return sum(hw.h)
}

// Reader hashes all data read through it.
type Reader struct {
	r io.Reader
	h hash.Hash
	n int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: sha1.New()}
}

// Read implements io.Reader.
func (hr *Reader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

func (hr *Reader) Count() int64 {
	return hr.n
}

func (hr *Reader) Sum() core.Hash {
	return sum(hr.h)
}

func sum(h hash.Hash) core.Hash {
	var out core.Hash
	h.Sum(out[:0])
	return out
}
