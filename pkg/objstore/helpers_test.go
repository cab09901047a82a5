package objstore_test

import (
	"bytes"
	"testing"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/objstore"
)

func createTestStore(t *testing.T, mutate ...func(*core.Config)) (objstore.Store, core.Config) {
	t.Helper()
	cfg := core.Default()
	cfg.Dir = t.TempDir()
	for _, m := range mutate {
		m(&cfg)
	}
	cfg = cfg.WithDefaults()

	s, err := objstore.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, cfg
}

func mustPut(t *testing.T, s objstore.Store, content []byte) core.Hash {
	t.Helper()
	h, err := s.Put(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	return h
}
