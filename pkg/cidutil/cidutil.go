// Package cidutil maps loose object names to content identifiers so objects
// can be addressed by multiformats-aware tooling. Objects map to CIDv1 with
// the git-raw codec and a SHA-1 multihash.
package cidutil

import (
	"bytes"
	"fmt"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ObjectCID returns the CIDv1 (git-raw, sha1) naming the same object as h.
func ObjectCID(h core.Hash) cid.Cid {
	mh, err := multihash.Encode(h[:], multihash.SHA1)
	if err != nil {
		// Encode only fails for unknown codes or bad digest lengths.
		panic(fmt.Sprintf("cidutil: encode sha1 multihash: %v", err))
	}
	return cid.NewCidV1(cid.GitRaw, mh)
}

// HashFromCID extracts the object name from c. Only git-raw CIDs carrying a
// 20-byte SHA-1 multihash are accepted.
func HashFromCID(c cid.Cid) (core.Hash, error) {
	prefix := c.Prefix()
	if prefix.Codec != cid.GitRaw {
		return core.ZeroHash, fmt.Errorf("%w: cid codec %#x is not git-raw", core.ErrInvalidInput, prefix.Codec)
	}
	dec, err := multihash.Decode(c.Hash())
	if err != nil {
		return core.ZeroHash, fmt.Errorf("%w: cid multihash: %v", core.ErrInvalidInput, err)
	}
	if dec.Code != multihash.SHA1 || len(dec.Digest) != core.HashSize {
		return core.ZeroHash, fmt.Errorf("%w: cid multihash is not sha1", core.ErrInvalidInput)
	}
	var h core.Hash
	copy(h[:], dec.Digest)
	return h, nil
}

// ParseRef accepts either a 40-char hex object name or a CID string.
func ParseRef(s string) (core.Hash, error) {
	h, hexErr := core.ParseHash(s)
	if hexErr == nil {
		return h, nil
	}
	c, err := cid.Decode(s)
	if err != nil {
		return core.ZeroHash, hexErr
	}
	return HashFromCID(c)
}

// Verify recomputes the multihash of c over the raw object payload
// ("<kind> <size>\x00<content>") and compares it.
func Verify(c cid.Cid, payload []byte) error {
	prefix := c.Prefix()
	sum, err := multihash.Sum(payload, prefix.MhType, prefix.MhLength)
	if err != nil {
		return fmt.Errorf("failed to compute multihash for verification: %w", err)
	}
	if !bytes.Equal(c.Hash(), sum) {
		return fmt.Errorf("%w: CID mismatch", core.ErrCorrupt)
	}
	return nil
}
