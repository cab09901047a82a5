package objstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/record"
	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"
)

// Walk calls fn for every committed object in fan-out then name order.
// Temporaries and foreign files are skipped.
func (s *store) Walk(fn func(h core.Hash) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	root := s.cfg.Objects.Dir
	fanout, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", core.ErrIOFailure, root, err)
	}

	for _, d := range fanout {
		if !d.IsDir() || len(d.Name()) != 2 || !isHex(d.Name()) {
			continue
		}
		dir := filepath.Join(root, d.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", core.ErrIOFailure, dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || len(e.Name()) != core.HexSize-2 {
				continue
			}
			h, err := core.ParseHash(d.Name() + e.Name())
			if err != nil {
				continue
			}
			if err := fn(h); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *store) Reindex() (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if s.catalog == nil {
		return 0, fmt.Errorf("%w: catalog is disabled", core.ErrInvalidInput)
	}

	// The reset rides in the same batch as the rebuilt records, so a failed
	// walk leaves the previous catalog in place.
	batch := s.catalog.NewBatch()
	defer batch.Close()
	if err := s.catalog.Reset(batch); err != nil {
		return 0, fmt.Errorf("%w: reset catalog: %w", core.ErrIOFailure, err)
	}

	skipped := 0
	err := s.Walk(func(h core.Hash) error {
		rec, err := s.describe(h)
		if err != nil {
			if errors.Is(err, core.ErrClosed) {
				return err
			}
			s.log.WithError(err).WithFields(logrus.Fields{
				"hash": h.String(),
				"kind": core.KindOf(err),
			}).Warn("object left out of catalog")
			skipped++
			return nil
		}
		return s.catalog.Put(batch, h, rec)
	})
	if err != nil {
		return 0, err
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("%w: commit catalog: %w", core.ErrIOFailure, err)
	}
	n, err := s.catalog.Count()
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"objects": n, "skipped": skipped}).Info("catalog rebuilt")
	return n, nil
}

// describe builds the catalog record for an object from its header and file.
func (s *store) describe(h core.Hash) (*record.Record, error) {
	o, err := s.open(h.String(), false)
	if err != nil {
		return nil, err
	}
	o.Close()

	st, err := os.Stat(o.path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", core.ErrIOFailure, o.path, err)
	}
	return record.New(o.hdr.Kind, o.hdr.Size, st.Size(), s.transform.Name()), nil
}
