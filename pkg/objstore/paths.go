package objstore

import (
	"path/filepath"

	"github.com/agenthands/gitcas/pkg/core"
)

// tempPattern names in-flight writes. They live in the objects root, never in
// a fan-out directory, so Walk cannot mistake them for objects.
const tempPattern = "tmp_obj_*"

// objectPath returns <root>/<hex[0:2]>/<hex[2:40]>.
func objectPath(root string, h core.Hash) string {
	hex := h.String()
	return filepath.Join(root, hex[:2], hex[2:])
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
