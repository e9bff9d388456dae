package testing

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
)

// benchKeys is the number of distinct keys used by the benchmarks
const benchKeys = 1024

// RunSlotMapBenchmarks runs all benchmarks for a table implementation. Tables
// in the shared regime are benchmarked with b.RunParallel.
func RunSlotMapBenchmarks(b *testing.B, name string, factory TableFactory) {
	newTable := func() Table { return factory(slotmap.DefaultLargeHashSize) }

	b.Run(name, func(b *testing.B) {
		b.Run("Query", func(b *testing.B) {
			benchmarkQuery(b, newTable())
		})

		b.Run("Query(not)", func(b *testing.B) {
			benchmarkQueryNot(b, newTable())
		})

		b.Run("Modify", func(b *testing.B) {
			benchmarkModify(b, newTable())
		})

		b.Run("ComputeReplace", func(b *testing.B) {
			benchmarkComputeReplace(b, newTable())
		})

		b.Run("InsertRemove", func(b *testing.B) {
			benchmarkInsertRemove(b, newTable())
		})

		b.Run("Iterate", func(b *testing.B) {
			benchmarkIterate(b, newTable())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, newTable())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// benchKeySet creates the keys up front so formatting is not measured
func benchKeySet(n int) []slot.Key {
	keys := make([]slot.Key, n)
	for i := range keys {
		keys[i] = slot.StringKey(fmt.Sprintf("bench-key-%d", i))
	}
	return keys
}

func fill(b *testing.B, table Table, keys []slot.Key) {
	for i, k := range keys {
		s, err := table.Modify(k, slot.Empty)
		if err != nil {
			b.Fatalf("Failed to fill table: %v", err)
		}
		s.SetRawValue(i)
	}
}

// run executes op b.N times, in parallel for shared tables
func run(b *testing.B, table Table, op func(i int)) {
	b.ResetTimer()
	if !table.ThreadSafe() {
		for i := 0; i < b.N; i++ {
			op(i)
		}
		return
	}
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			op(counter)
			counter++
		}
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkQuery(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureQuery)

	keys := benchKeySet(benchKeys)
	fill(b, table, keys)

	run(b, table, func(i int) {
		table.Query(keys[i%len(keys)])
	})
}

func benchmarkQueryNot(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureQuery)

	fill(b, table, benchKeySet(benchKeys))
	missing := slot.StringKey("missing-key")

	run(b, table, func(int) {
		table.Query(missing)
	})
}

func benchmarkModify(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureModify)

	keys := benchKeySet(benchKeys)
	run(b, table, func(i int) {
		_, _ = table.Modify(keys[i%len(keys)], slot.Empty)
	})
}

func benchmarkComputeReplace(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureCompute)

	keys := benchKeySet(benchKeys)
	fill(b, table, keys)

	run(b, table, func(i int) {
		k := keys[i%len(keys)]
		_, _ = table.Compute(k, slotmap.Replace(slot.NewWithValue(k, slot.Empty, i)))
	})
}

func benchmarkInsertRemove(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureCompute)

	keys := benchKeySet(benchKeys)
	fill(b, table, keys[:benchKeys/2])

	run(b, table, func(i int) {
		k := keys[i%len(keys)]
		if i%2 == 0 {
			_, _ = table.Modify(k, slot.Empty)
		} else {
			_, _ = table.Compute(k, slotmap.Remove())
		}
	})
}

func benchmarkIterate(b *testing.B, table Table) {
	requireFeature(b, table, slotmap.FeatureOrderedIteration)

	fill(b, table, benchKeySet(benchKeys))

	run(b, table, func(int) {
		_ = table.Slots()
	})
}

func benchmarkMixedUsage(b *testing.B, table Table) {
	keys := benchKeySet(benchKeys)
	fill(b, table, keys)

	// 80% reads, 10% modify, 10% remove
	run(b, table, func(i int) {
		k := keys[(i*7)%len(keys)]
		switch i % 10 {
		case 0:
			_, _ = table.Modify(k, slot.Empty)
		case 1:
			_, _ = table.Compute(k, slotmap.Remove())
		default:
			table.Query(k)
		}
	})
}
