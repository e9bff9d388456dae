package ordered_test

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/ordered"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	smtesting "github.com/ValentinKolb/dSlot/lib/slotmap/testing"
)

func newHarness(largeHashSize int) smtesting.Table {
	p := slotmap.DefaultPolicy()
	p.LargeHashSize = largeHashSize
	p.Table = slotmap.ImplOrdered
	return smtesting.NewHarness(ordered.New(), p)
}

func Test(t *testing.T) {
	smtesting.RunSlotMapTests(t, "Ordered", newHarness)
}

func Benchmark(b *testing.B) {
	smtesting.RunSlotMapBenchmarks(b, "Ordered", newHarness)
}

func TestTombstones(t *testing.T) {
	h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
	for i := 0; i < 20; i++ {
		_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}

	for i := 0; i < 10; i++ {
		_, _ = h.Compute(slot.IndexKey(int32(i)), slotmap.Remove())
	}
	info := h.Map().Info()
	meta, ok := info.Metadata.(ordered.OrderedMetadata)
	if !ok {
		t.Fatalf("Expected OrderedMetadata, got %T", info.Metadata)
	}
	if meta.Tombstones != 10 || meta.Positions != 20 {
		t.Errorf("Expected 10 tombstones in 20 positions, got %d in %d", meta.Tombstones, meta.Positions)
	}

	// positions are never reused
	_, _ = h.Modify(slot.IndexKey(0), slot.Empty)
	if s := h.Query(slot.IndexKey(0)); s.OrderedPos() != 20 {
		t.Errorf("Expected reinserted slot at position 20, got %d", s.OrderedPos())
	}
	if h.Map().Implementation() != slotmap.ImplOrdered {
		t.Errorf("Expected ordered table with 10 tombstones, got %s", h.Map().Implementation())
	}
}

func TestCompaction(t *testing.T) {
	h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
	before := events.Compactions()

	for i := 0; i < 30; i++ {
		_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}
	for i := 0; i < 11; i++ {
		_, _ = h.Compute(slot.IndexKey(int32(i*2)), slotmap.Remove())
	}

	if h.Map().Implementation() != slotmap.ImplHashed {
		t.Fatalf("Expected compaction into hashed after 11 removals, got %s", h.Map().Implementation())
	}
	if events.Compactions() != before+1 {
		t.Errorf("Expected one compaction event, got %d", events.Compactions()-before)
	}
	if h.Size() != 19 {
		t.Errorf("Expected 19 slots after compaction, got %d", h.Size())
	}

	prev := int32(-1)
	for _, s := range h.Slots() {
		if s.Key().Index() <= prev || s.Key().Index()%2 == 0 && s.Key().Index() < 22 {
			t.Errorf("Expected odd indices in ascending order, got %d after %d", s.Key().Index(), prev)
		}
		prev = s.Key().Index()
	}
}

func TestCompactionDuringTraversal(t *testing.T) {
	h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
	for i := 0; i < 20; i++ {
		_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}
	if h.SupportsFeature(slotmap.FeatureMutationDuringIteration) {
		t.Fatalf("Expected ordered table not to allow mutation during All, it may compact")
	}

	visited := 0
	for _, s := range h.Slots() {
		visited++
		if _, err := h.Compute(s.Key(), slotmap.Remove()); err != nil {
			t.Fatal(err)
		}
		if s.Key().Index() == 15 {
			_, _ = h.Modify(slot.StringKey("late"), slot.Empty)
		}
	}

	if visited != 20 {
		t.Errorf("Expected 20 visited slots, got %d", visited)
	}
	if h.Map().Implementation() != slotmap.ImplHashed {
		t.Errorf("Expected compaction during the traversal, got %s", h.Map().Implementation())
	}
	if h.Size() != 1 || h.Query(slot.StringKey("late")) == nil {
		t.Errorf("Expected only the late slot to remain, got %d slots", h.Size())
	}
}

func TestCapacity(t *testing.T) {
	m, err := ordered.NewWithCapacity(5)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if b := m.Info().Buckets; b != 8 {
		t.Errorf("Expected 8 buckets, got %d", b)
	}
	if _, err := ordered.NewWithCapacity(0); !errors.Is(err, slot.ErrInvalidCapacity) {
		t.Errorf("Expected InvalidCapacity, got %v", err)
	}
}
