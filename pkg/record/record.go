package record

import (
	"fmt"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/fxamacker/cbor/v2"
)

// Version is the only record layout this package reads or writes.
const Version = 1

// Record describes a committed object as seen by the catalog.
type Record struct {
	Version    uint16    `cbor:"version"`
	Kind       core.Kind `cbor:"kind"`
	Size       int64     `cbor:"size"`
	StoredSize int64     `cbor:"stored_size"`
	Codec      string    `cbor:"codec"`
}

// New returns a current-version record.
func New(kind core.Kind, size, storedSize int64, codec string) *Record {
	return &Record{
		Version:    Version,
		Kind:       kind,
		Size:       size,
		StoredSize: storedSize,
		Codec:      codec,
	}
}

// Core Deterministic Encoding: equal records always encode to equal bytes.
var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func Encode(r *Record) ([]byte, error) {
	if err := validate(r); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return encMode.Marshal(r)
}

func Decode(b []byte) (*Record, error) {
	var r Record
	if err := cbor.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal record: %v", core.ErrCorrupt, err)
	}
	if err := validate(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorrupt, err)
	}
	return &r, nil
}

func validate(r *Record) error {
	if r.Version != Version {
		return fmt.Errorf("unsupported record version %d", r.Version)
	}
	if _, err := core.ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if r.Size < 0 {
		return fmt.Errorf("negative size %d", r.Size)
	}
	if r.StoredSize < 0 {
		return fmt.Errorf("negative stored size %d", r.StoredSize)
	}
	if r.Codec == "" {
		return fmt.Errorf("missing codec")
	}
	return nil
}
