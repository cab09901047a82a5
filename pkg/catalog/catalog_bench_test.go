package catalog

import (
	"fmt"
	"testing"

	"github.com/agenthands/gitcas/pkg/core"
	"github.com/agenthands/gitcas/pkg/record"
	"github.com/cockroachdb/pebble"
)

func BenchmarkPut(b *testing.B) {
	cat, err := Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer cat.Close()

	rec := record.New(core.KindBlob, 4096, 1024, core.TransformZlib)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = cat.Put(nil, randomHash(b, int64(i)), rec)
	}
}

func BenchmarkGet(b *testing.B) {
	cat, err := Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer cat.Close()

	const N = 500
	hashes := make([]core.Hash, N)
	for i := 0; i < N; i++ {
		hashes[i] = randomHash(b, int64(i))
		_ = cat.Put(nil, hashes[i], record.New(core.KindBlob, int64(i), int64(i), core.TransformZlib))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _, _ = cat.Get(hashes[i%N])
	}
}

func BenchmarkBatchPut(b *testing.B) {
	for _, bs := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("BatchSize_%d", bs), func(b *testing.B) {
			cat, err := Open(b.TempDir())
			if err != nil {
				b.Fatal(err)
			}
			defer cat.Close()

			rec := record.New(core.KindBlob, 1, 1, core.TransformZlib)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				batch := cat.NewBatch()
				for j := 0; j < bs; j++ {
					_ = cat.Put(batch, randomHash(b, int64(i*bs+j)), rec)
				}
				_ = batch.Commit(pebble.NoSync)
			}
		})
	}
}
