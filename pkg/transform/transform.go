package transform

import (
	"fmt"
	"io"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Transform defines the streaming codec objects are stored with.
type Transform interface {
	Name() string
	// NewWriter compresses into w. Close must be called to emit the final
	// block; it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader decompresses r. Stream errors surface as core.ErrIOFailure.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// New returns the transform named by cfg.
func New(cfg core.TransformConfig) (Transform, error) {
	switch cfg.Name {
	case core.TransformZlib, "":
		return NewZlib(cfg.Level), nil
	case core.TransformZstd:
		return NewZstd(cfg.Level), nil
	default:
		return nil, fmt.Errorf("%w: unsupported transform: %s", core.ErrInvalidInput, cfg.Name)
	}
}

// Zlib transform: the deflate stream git uses for loose objects.
type zlibTransform struct {
	level int
}

func NewZlib(level int) Transform {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return &zlibTransform{level: level}
}

func (t *zlibTransform) Name() string { return core.TransformZlib }

func (t *zlibTransform) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw, err := zlib.NewWriterLevel(w, t.level)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib level %d: %v", core.ErrInvalidInput, t.level, err)
	}
	return zw, nil
}

func (t *zlibTransform) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, streamError(t.Name(), err)
	}
	return &failReader{r: zr, c: zr, name: t.Name()}, nil
}

// Zstd transform. Stores using it are not readable by git.
type zstdTransform struct {
	level zstd.EncoderLevel
}

func NewZstd(level int) Transform {
	if level == 0 {
		return &zstdTransform{level: zstd.SpeedDefault}
	}
	return &zstdTransform{level: zstd.EncoderLevelFromZstd(level)}
}

func (t *zstdTransform) Name() string { return core.TransformZstd }

func (t *zstdTransform) NewWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(t.level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd writer: %v", core.ErrInvalidInput, err)
	}
	return enc, nil
}

func (t *zstdTransform) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, streamError(t.Name(), err)
	}
	rc := dec.IOReadCloser()
	return &failReader{r: rc, c: rc, name: t.Name()}, nil
}

// failReader reports every decompression error other than io.EOF as an I/O
// failure, keeping the codec's own error in the chain.
type failReader struct {
	r    io.Reader
	c    io.Closer
	name string
}

func (f *failReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err != nil && err != io.EOF {
		err = streamError(f.name, err)
	}
	return n, err
}

func (f *failReader) Close() error {
	return f.c.Close()
}

func streamError(name string, err error) error {
	return fmt.Errorf("%w: %s stream: %w", core.ErrIOFailure, name, err)
}
