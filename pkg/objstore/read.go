package objstore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/agenthands/gitcas/pkg/bounded"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/hashing"
	"github.com/agenthands/gitcas/pkg/header"
	"github.com/sirupsen/logrus"
)

// maxPrealloc caps how much of a declared size Get trusts up front.
const maxPrealloc = 1 << 20

// objectReader yields the content of one object. Read returns io.EOF only
// after the declared size was met and the compressed stream ended cleanly.
type objectReader struct {
	hash core.Hash
	path string
	hdr  header.Header

	file   *os.File
	zr     io.ReadCloser
	hr     *hashing.Reader
	body   *bounded.Reader
	verify bool

	err error
}

// open locates, decompresses and parses the header of an object.
func (s *store) open(hash string, verify bool) (*objectReader, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	h, err := core.ParseHash(hash)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", hash, err)
	}
	path := objectPath(s.cfg.Objects.Dir, h)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: object %s (%s)", core.ErrNotFound, h, path)
		}
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrIOFailure, path, err)
	}

	zr, err := s.transform.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read object %s (%s): %w", h, path, err)
	}

	hr := hashing.NewReader(zr)
	br := bufio.NewReader(hr)
	hdr, err := header.Read(br)
	if err != nil {
		zr.Close()
		f.Close()
		return nil, fmt.Errorf("read object %s (%s): %w", h, path, err)
	}
	if max := s.cfg.Limits.MaxObjectBytes; max > 0 && uint64(hdr.Size) > max {
		zr.Close()
		f.Close()
		return nil, fmt.Errorf("%w: object %s (%s) declares %d bytes, limit is %d", core.ErrTooLarge, h, path, hdr.Size, max)
	}

	s.log.WithFields(logrus.Fields{"hash": h.String(), "path": path, "size": hdr.Size}).Debug("object opened")

	return &objectReader{
		hash:   h,
		path:   path,
		hdr:    hdr,
		file:   f,
		zr:     zr,
		hr:     hr,
		body:   bounded.NewReader(br, hdr.Size),
		verify: verify,
	}, nil
}

func (o *objectReader) Read(p []byte) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	n, err := o.body.Read(p)
	switch {
	case err == io.EOF:
		if ferr := o.finish(); ferr != nil {
			o.err = ferr
			return n, ferr
		}
	case err != nil:
		o.err = o.wrap(err)
		return n, o.err
	}
	return n, err
}

// finish runs once the content stream has ended.
func (o *objectReader) finish() error {
	if err := o.body.CheckComplete(); err != nil {
		return o.wrap(err)
	}
	if o.verify {
		if got := o.hr.Sum(); got != o.hash {
			return o.wrap(fmt.Errorf("%w: content hashes to %s", core.ErrCorrupt, got))
		}
	}
	return nil
}

func (o *objectReader) wrap(err error) error {
	return fmt.Errorf("read object %s (%s): %w", o.hash, o.path, err)
}

func (o *objectReader) Close() error {
	zerr := o.zr.Close()
	if err := o.file.Close(); err != nil {
		return err
	}
	return zerr
}

func (s *store) Get(hash string) ([]byte, error) {
	o, err := s.open(hash, s.cfg.Objects.VerifyOnRead)
	if err != nil {
		return nil, err
	}
	defer o.Close()

	var buf bytes.Buffer
	buf.Grow(int(min(o.hdr.Size, maxPrealloc)))
	if _, err := io.Copy(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *store) Reader(hash string) (io.ReadCloser, header.Header, error) {
	o, err := s.open(hash, s.cfg.Objects.VerifyOnRead)
	if err != nil {
		return nil, header.Header{}, err
	}
	return o, o.hdr, nil
}

func (s *store) Stat(hash string) (header.Header, error) {
	if s.catalog != nil {
		if err := s.checkOpen(); err != nil {
			return header.Header{}, err
		}
		h, err := core.ParseHash(hash)
		if err != nil {
			return header.Header{}, fmt.Errorf("stat object %q: %w", hash, err)
		}
		rec, ok, err := s.catalog.Get(h)
		if err != nil {
			s.log.WithField("hash", hash).WithError(err).Warn("catalog lookup failed")
		} else if ok {
			return header.Header{Kind: rec.Kind, Size: rec.Size}, nil
		}
	}

	o, err := s.open(hash, false)
	if err != nil {
		return header.Header{}, err
	}
	o.Close()
	return o.hdr, nil
}

func (s *store) Has(hash string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	h, err := core.ParseHash(hash)
	if err != nil {
		return false, fmt.Errorf("has object %q: %w", hash, err)
	}
	if s.catalog != nil {
		if _, ok, err := s.catalog.Get(h); err == nil && ok {
			return true, nil
		}
	}

	path := objectPath(s.cfg.Objects.Dir, h)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %w", core.ErrIOFailure, path, err)
	}
	return true, nil
}

func (s *store) Verify(hash string) error {
	o, err := s.open(hash, true)
	if err != nil {
		return err
	}
	defer o.Close()

	_, err = io.Copy(io.Discard, o)
	return err
}
