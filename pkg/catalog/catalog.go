package catalog

import (
	"errors"
	"fmt"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/record"
	"github.com/cockroachdb/pebble"
)

// PrefixObject namespaces object records: obj:<20 raw hash bytes>.
var PrefixObject = []byte("obj:")

// Catalog defines the interface for the embedded KV index of loose objects.
// The object files remain authoritative; everything here can be rebuilt.
type Catalog interface {
	Get(h core.Hash) (*record.Record, bool, error)
	// Put writes into batch when non-nil, otherwise directly with sync.
	Put(batch *pebble.Batch, h core.Hash, rec *record.Record) error
	Iterate(fn func(h core.Hash, rec *record.Record) error) error
	Count() (int, error)
	// Reset drops every object record. Within a batch, Puts made after the
	// Reset survive it, so a rebuild can replace the catalog in one commit.
	Reset(batch *pebble.Batch) error

	NewBatch() *pebble.Batch
	Close() error
}

type pebbleCatalog struct {
	db *pebble.DB
}

// Open opens a Pebble-based catalog in the specified directory.
func Open(dir string) (Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open pebble db: %w", core.ErrIOFailure, err)
	}
	return &pebbleCatalog{db: db}, nil
}

func (c *pebbleCatalog) Close() error {
	return c.db.Close()
}

func (c *pebbleCatalog) NewBatch() *pebble.Batch {
	return c.db.NewBatch()
}

func (c *pebbleCatalog) Get(h core.Hash) (*record.Record, bool, error) {
	val, closer, err := c.db.Get(objKey(h))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: catalog get %s: %w", core.ErrIOFailure, h, err)
	}
	defer closer.Close()

	rec, err := record.Decode(val)
	if err != nil {
		return nil, false, fmt.Errorf("catalog entry %s: %w", h, err)
	}
	return rec, true, nil
}

func (c *pebbleCatalog) Put(batch *pebble.Batch, h core.Hash, rec *record.Record) error {
	val, err := record.Encode(rec)
	if err != nil {
		return err
	}
	if batch != nil {
		return batch.Set(objKey(h), val, nil)
	}
	return c.db.Set(objKey(h), val, pebble.Sync)
}

func (c *pebbleCatalog) Iterate(fn func(h core.Hash, rec *record.Record) error) error {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: PrefixObject,
		UpperBound: incrementByte(PrefixObject),
	})
	if err != nil {
		return fmt.Errorf("%w: catalog iterator: %w", core.ErrIOFailure, err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		raw := iter.Key()[len(PrefixObject):]
		if len(raw) != core.HashSize {
			return fmt.Errorf("%w: catalog key of %d bytes", core.ErrCorrupt, len(raw))
		}
		var h core.Hash
		copy(h[:], raw)

		rec, err := record.Decode(iter.Value())
		if err != nil {
			return fmt.Errorf("catalog entry %s: %w", h, err)
		}
		if err := fn(h, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (c *pebbleCatalog) Count() (int, error) {
	n := 0
	err := c.Iterate(func(core.Hash, *record.Record) error {
		n++
		return nil
	})
	return n, err
}

func (c *pebbleCatalog) Reset(batch *pebble.Batch) error {
	if batch != nil {
		return batch.DeleteRange(PrefixObject, incrementByte(PrefixObject), nil)
	}
	return c.db.DeleteRange(PrefixObject, incrementByte(PrefixObject), pebble.Sync)
}

func objKey(h core.Hash) []byte {
	key := make([]byte, 0, len(PrefixObject)+core.HashSize)
	key = append(key, PrefixObject...)
	return append(key, h[:]...)
}

func incrementByte(b []byte) []byte {
	res := make([]byte, len(b))
	copy(res, b)
	for i := len(res) - 1; i >= 0; i-- {
		res[i]++
		if res[i] != 0 {
			return res
		}
	}
	return nil
}
