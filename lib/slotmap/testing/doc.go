// Package testing provides standardised tests and benchmarks for slot tables.
//
// The suite runs against the Table interface, which is implemented by
// container.Container (both regimes) and by Harness, an unlocked owner that
// drives a single representation directly.
//
// The package contains:
//   - RunSlotMapTests: the contract of the slotmap.SlotMap interface
//     (idempotent Modify, the Compute outcomes, insertion order across
//     replace/remove/reinsert, collisions, promotion and concurrent access)
//   - RunSlotMapBenchmarks: throughput of common operations, in parallel for
//     tables in the shared regime
//
// Tests for features a table doesn't promise are skipped.
//
// Example usage:
//
//	factory := func(largeHashSize int) testing.Table {
//		p := slotmap.DefaultPolicy()
//		p.LargeHashSize = largeHashSize
//		return testing.NewHarness(embedded.New(), p)
//	}
//
//	testing.RunSlotMapTests(t, "Embedded", factory)
//	testing.RunSlotMapBenchmarks(b, "Embedded", factory)
package testing
