package catalog

import (
	"errors"
	"testing"

	"github.com/agenthands/gitcas/internal/testkit"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/record"
	"github.com/cockroachdb/pebble"
)

func randomHash(t testing.TB, seed int64) core.Hash {
	t.Helper()
	var h core.Hash
	copy(h[:], testkit.RandomBytes(testkit.RNG(seed), core.HashSize))
	return h
}

func openTest(t *testing.T) Catalog {
	t.Helper()
	cat, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestCatalog(t *testing.T) {
	cat := openTest(t)

	t.Run("PutGet", func(t *testing.T) {
		h := randomHash(t, 1)
		rec := record.New(core.KindBlob, 12, 20, core.TransformZlib)

		if err := cat.Put(nil, h, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, ok, err := cat.Get(h)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || *got != *rec {
			t.Errorf("expected %+v, got %+v (ok=%v)", rec, got, ok)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := cat.Get(randomHash(t, 99))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Error("expected missing record")
		}
	})

	t.Run("InvalidRecord", func(t *testing.T) {
		err := cat.Put(nil, randomHash(t, 2), &record.Record{Version: 1})
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCatalog_BatchIterateReset(t *testing.T) {
	cat := openTest(t)

	want := map[core.Hash]int64{}
	batch := cat.NewBatch()
	for i := int64(1); i <= 10; i++ {
		h := randomHash(t, i)
		want[h] = i
		if err := cat.Put(batch, h, record.New(core.KindBlob, i, i, core.TransformZlib)); err != nil {
			t.Fatalf("batch Put failed: %v", err)
		}
	}

	// Nothing visible before commit.
	if n, _ := cat.Count(); n != 0 {
		t.Fatalf("expected 0 records before commit, got %d", n)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	seen := 0
	err := cat.Iterate(func(h core.Hash, rec *record.Record) error {
		size, ok := want[h]
		if !ok {
			t.Errorf("unexpected hash %s", h)
		}
		if rec.Size != size {
			t.Errorf("%s: expected size %d, got %d", h, size, rec.Size)
		}
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if seen != len(want) {
		t.Errorf("expected %d records, iterated %d", len(want), seen)
	}

	stop := errors.New("stop")
	if err := cat.Iterate(func(core.Hash, *record.Record) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}

	if err := cat.Reset(nil); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if n, err := cat.Count(); err != nil || n != 0 {
		t.Errorf("expected empty catalog after Reset, got %d (%v)", n, err)
	}
}

func TestCatalog_ResetInBatch(t *testing.T) {
	cat := openTest(t)

	stale, kept := randomHash(t, 21), randomHash(t, 22)
	for _, h := range []core.Hash{stale, kept} {
		if err := cat.Put(nil, h, record.New(core.KindBlob, 1, 9, core.TransformZlib)); err != nil {
			t.Fatal(err)
		}
	}

	batch := cat.NewBatch()
	defer batch.Close()
	if err := cat.Reset(batch); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := cat.Put(batch, kept, record.New(core.KindBlob, 2, 10, core.TransformZlib)); err != nil {
		t.Fatal(err)
	}

	// The old records stay readable until the batch lands.
	if n, _ := cat.Count(); n != 2 {
		t.Fatalf("expected 2 records before commit, got %d", n)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if _, ok, _ := cat.Get(stale); ok {
		t.Error("stale record survived Reset")
	}
	rec, ok, err := cat.Get(kept)
	if err != nil || !ok {
		t.Fatalf("expected record written after Reset, got ok=%v err=%v", ok, err)
	}
	if rec.Size != 2 {
		t.Errorf("expected the rewritten record, got size %d", rec.Size)
	}
}

func TestCatalog_Reopen(t *testing.T) {
	dir := t.TempDir()
	h := randomHash(t, 7)

	cat, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cat.Put(nil, h, record.New(core.KindBlob, 5, 13, core.TransformZstd)); err != nil {
		t.Fatal(err)
	}
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	cat, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	rec, ok, err := cat.Get(h)
	if err != nil || !ok {
		t.Fatalf("record lost across reopen: ok=%v err=%v", ok, err)
	}
	if rec.Codec != core.TransformZstd {
		t.Errorf("expected zstd codec, got %s", rec.Codec)
	}
}

func TestIncrementByte(t *testing.T) {
	if got := incrementByte([]byte("obj:")); string(got) != "obj;" {
		t.Errorf("expected obj;, got %q", got)
	}
	if got := incrementByte([]byte{0xff, 0xff}); got != nil {
		t.Errorf("expected nil on overflow, got %v", got)
	}
}
