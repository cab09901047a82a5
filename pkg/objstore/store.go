package objstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/agenthands/gitcas/pkg/bounded"
	"github.com/agenthands/gitcas/pkg/catalog"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/hashing"
	"github.com/agenthands/gitcas/pkg/header"
	"github.com/agenthands/gitcas/pkg/record"
	"github.com/agenthands/gitcas/pkg/transform"
	"github.com/sirupsen/logrus"
)

type store struct {
	cfg core.Config

	transform transform.Transform
	catalog   catalog.Catalog // nil when disabled
	log       logrus.FieldLogger

	closed atomic.Bool
}

// Open initializes and opens a store. The objects directory is created when
// missing; the catalog is opened only when enabled.
func Open(cfg core.Config, opts ...Option) (Store, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr, err := transform.New(cfg.Transform)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Objects.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create objects dir %s: %w", core.ErrIOFailure, cfg.Objects.Dir, err)
	}

	s := &store{
		cfg:       cfg,
		transform: tr,
		log:       discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.Catalog.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		s.catalog = cat
	}

	s.log.WithFields(logrus.Fields{
		"path":      cfg.Objects.Dir,
		"transform": tr.Name(),
		"catalog":   cfg.Catalog.Enabled,
	}).Debug("object store opened")

	return s, nil
}

func (s *store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.catalog != nil {
		return s.catalog.Close()
	}
	return nil
}

func (s *store) checkOpen() error {
	if s.closed.Load() {
		return core.ErrClosed
	}
	return nil
}

func (s *store) checkSize(size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: negative content length %d", core.ErrInvalidInput, size)
	}
	if max := s.cfg.Limits.MaxObjectBytes; max > 0 && uint64(size) > max {
		return fmt.Errorf("%w: object of %d bytes exceeds limit of %d", core.ErrTooLarge, size, max)
	}
	return nil
}

// Encode writes the compressed form of a blob of exactly size bytes from r
// to dst and returns its name. A nil t hashes without compressing.
func Encode(dst io.Writer, t transform.Transform, r io.Reader, size int64) (core.Hash, error) {
	if size < 0 {
		return core.ZeroHash, fmt.Errorf("%w: negative content length %d", core.ErrInvalidInput, size)
	}

	var sink io.WriteCloser = nopWriteCloser{dst}
	if t != nil {
		w, err := t.NewWriter(dst)
		if err != nil {
			return core.ZeroHash, err
		}
		sink = w
	}
	hw := hashing.NewWriter(sink)

	if _, err := hw.Write(header.Encode(core.KindBlob, size)); err != nil {
		sink.Close()
		return core.ZeroHash, fmt.Errorf("%w: write header: %w", core.ErrIOFailure, err)
	}

	body := bounded.NewReader(r, size)
	if _, err := io.Copy(hw, body); err != nil {
		sink.Close()
		if errors.Is(err, core.ErrSizeMismatch) {
			return core.ZeroHash, err
		}
		return core.ZeroHash, fmt.Errorf("%w: write content: %w", core.ErrIOFailure, err)
	}
	if err := body.CheckComplete(); err != nil {
		sink.Close()
		return core.ZeroHash, err
	}

	if err := sink.Close(); err != nil {
		return core.ZeroHash, fmt.Errorf("%w: finish compressed stream: %w", core.ErrIOFailure, err)
	}
	return hw.Sum(), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// countingWriter tracks the compressed size for catalog records.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (s *store) Hash(r io.Reader, size int64) (core.Hash, error) {
	if err := s.checkOpen(); err != nil {
		return core.ZeroHash, err
	}
	if err := s.checkSize(size); err != nil {
		return core.ZeroHash, err
	}
	return Encode(io.Discard, nil, r, size)
}

func (s *store) Put(r io.Reader, size int64) (core.Hash, error) {
	if err := s.checkOpen(); err != nil {
		return core.ZeroHash, err
	}
	if err := s.checkSize(size); err != nil {
		return core.ZeroHash, err
	}

	root := s.cfg.Objects.Dir
	tmp, err := os.CreateTemp(root, tempPattern)
	if err != nil {
		return core.ZeroHash, fmt.Errorf("%w: create temp in %s: %w", core.ErrIOFailure, root, err)
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				s.log.WithField("path", tmpPath).WithError(rmErr).Warn("failed to remove temporary object")
			}
		}
	}()

	cw := &countingWriter{w: tmp}
	h, err := Encode(cw, s.transform, r, size)
	if err != nil {
		return core.ZeroHash, fmt.Errorf("put object (%d bytes) via %s: %w", size, tmpPath, err)
	}

	if s.cfg.Objects.Fsync {
		if err := tmp.Sync(); err != nil {
			return core.ZeroHash, fmt.Errorf("%w: sync %s: %w", core.ErrIOFailure, tmpPath, err)
		}
	}
	if err := tmp.Chmod(0o444); err != nil {
		return core.ZeroHash, fmt.Errorf("%w: chmod %s: %w", core.ErrIOFailure, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return core.ZeroHash, fmt.Errorf("%w: close %s: %w", core.ErrIOFailure, tmpPath, err)
	}

	dst := objectPath(root, h)
	existed, err := commit(tmpPath, dst)
	if err != nil {
		return core.ZeroHash, err
	}
	done = true

	log := s.log.WithFields(logrus.Fields{"hash": h.String(), "path": dst, "size": size})
	if existed {
		log.Debug("object already present")
	} else {
		log.Debug("object written")
	}

	if s.catalog != nil {
		rec := record.New(core.KindBlob, size, cw.n, s.transform.Name())
		if err := s.catalog.Put(nil, h, rec); err != nil {
			// The object file is committed; Reindex repairs the catalog.
			log.WithError(err).Warn("catalog update failed")
		}
	}

	return h, nil
}

// commit moves a finished temporary file to dst. An object already at dst
// wins and the temporary is discarded.
func commit(tmpPath, dst string) (existed bool, err error) {
	if _, err := os.Lstat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return true, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("%w: create %s: %w", core.ErrIOFailure, filepath.Dir(dst), err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Lstat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return true, nil
		}
		return false, fmt.Errorf("%w: rename %s to %s: %w", core.ErrIOFailure, tmpPath, dst, err)
	}
	return false, nil
}

func (s *store) PutFile(path string) (core.Hash, error) {
	if err := s.checkOpen(); err != nil {
		return core.ZeroHash, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.ZeroHash, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return core.ZeroHash, fmt.Errorf("%w: open %s: %w", core.ErrIOFailure, path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return core.ZeroHash, fmt.Errorf("%w: stat %s: %w", core.ErrIOFailure, path, err)
	}
	if !st.Mode().IsRegular() {
		return core.ZeroHash, fmt.Errorf("%w: %s is not a regular file", core.ErrInvalidInput, path)
	}
	return s.Put(f, st.Size())
}
