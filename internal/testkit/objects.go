package testkit

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// RawObjectHash returns the lowercase hex SHA-1 of an uncompressed object payload.
func RawObjectHash(payload []byte) string {
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// ObjectPath returns <root>/<2hex>/<38hex> for a 40-char hex name.
func ObjectPath(root, hexName string) string {
	return filepath.Join(root, hexName[:2], hexName[2:])
}

// WriteRawObject zlib-compresses payload verbatim and writes it under name,
// bypassing every check the store performs. Used to plant malformed objects.
func WriteRawObject(t testing.TB, root, name string, payload []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		t.Fatalf("compress raw object: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress raw object: %v", err)
	}
	return WriteStoredObject(t, root, name, buf.Bytes())
}

// WriteStoredObject writes already-encoded bytes at the path for name.
func WriteStoredObject(t testing.TB, root, name string, stored []byte) string {
	t.Helper()
	path := ObjectPath(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_ = os.Chmod(path, 0o644)
	if err := os.WriteFile(path, stored, 0o644); err != nil {
		t.Fatalf("write raw object: %v", err)
	}
	return path
}

// CorruptFile flips bits in the byte at offset of a stored file. A negative
// offset counts from the end.
func CorruptFile(t testing.TB, path string, offset int) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if offset < 0 {
		offset += len(data)
	}
	data[offset] ^= 0xFF
	_ = os.Chmod(path, 0o644)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Temporaries lists leftover temp files directly under the objects root.
func Temporaries(t testing.TB, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read %s: %v", root, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "tmp_obj_") {
			out = append(out, e.Name())
		}
	}
	return out
}
