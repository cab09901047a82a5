package core

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashSize is the length of an object digest in bytes.
	HashSize = 20
	// HexSize is the length of the canonical hex form of a Hash.
	HexSize = 2 * HashSize
)

// Hash is the SHA-1 digest naming a stored object.
type Hash [HashSize]byte

// ZeroHash is the all-zero digest. No object is expected to hash to it.
var ZeroHash Hash

// String returns the canonical 40 character lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ParseHash parses the canonical form of an object hash. Anything other than
// exactly 40 lowercase hex characters is rejected with ErrInvalidInput.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HexSize {
		return h, fmt.Errorf("%w: object hash must be %d hex characters, got %d", ErrInvalidInput, HexSize, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') {
			continue
		}
		return h, fmt.Errorf("%w: object hash %q has non-hex character %q at offset %d", ErrInvalidInput, s, c, i)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return h, nil
}

// Kind is the object type named in an object header.
type Kind string

// KindBlob is the only kind this store reads or writes.
const KindBlob Kind = "blob"

// ParseKind matches s against the closed set of supported kinds.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBlob:
		return KindBlob, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}
