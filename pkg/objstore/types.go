package objstore

import (
	"io"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/header"
)

// Store is a loose object store rooted at Config.Objects.Dir. Object names are
// 40-char lowercase hex strings; anything else fails with core.ErrInvalidInput
// before storage is touched.
type Store interface {
	// Put stores exactly size bytes read from r as a blob and returns its
	// name. Storing content that already exists succeeds without rewriting.
	Put(r io.Reader, size int64) (core.Hash, error)
	PutFile(path string) (core.Hash, error)
	// Hash computes the name Put would return without writing anything.
	Hash(r io.Reader, size int64) (core.Hash, error)

	// Get returns the content of an object. No partial content is returned
	// on error.
	Get(hash string) ([]byte, error)
	// Reader streams the content of an object. Size and trailing data
	// problems surface from the final Read.
	Reader(hash string) (io.ReadCloser, header.Header, error)
	// Stat reports the header of an object. With the catalog enabled the
	// answer comes from the catalog, which can be stale until Reindex if
	// object files were changed behind the store's back.
	Stat(hash string) (header.Header, error)
	// Has reports whether an object exists. A catalog hit is trusted without
	// touching the file, so the same staleness as Stat applies.
	Has(hash string) (bool, error)
	// Verify decompresses the whole object and checks its digest against
	// its name.
	Verify(hash string) error

	Walk(fn func(h core.Hash) error) error
	// Reindex rebuilds the catalog from the object files and returns the
	// number of objects indexed. Objects whose header cannot be read are
	// logged and left out; the old catalog is replaced in a single commit.
	Reindex() (int, error)

	Close() error
}
