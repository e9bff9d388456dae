package hashed_test

import (
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/hashed"
	smtesting "github.com/ValentinKolb/dSlot/lib/slotmap/testing"
)

func newHarness(largeHashSize int) smtesting.Table {
	p := slotmap.DefaultPolicy()
	p.LargeHashSize = largeHashSize
	return smtesting.NewHarness(hashed.New(0), p)
}

func Test(t *testing.T) {
	smtesting.RunSlotMapTests(t, "Hashed", newHarness)
}

func Benchmark(b *testing.B) {
	smtesting.RunSlotMapBenchmarks(b, "Hashed", newHarness)
}

func TestFromSlots(t *testing.T) {
	src := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
	for i := 0; i < 10; i++ {
		s, _ := src.Modify(slot.IndexKey(int32(i)), slot.DontEnum)
		s.SetRawValue(i)
	}
	extra := slot.NewWithValue(slot.StringKey("extra"), slot.Empty, "x")

	m := hashed.FromSlots(src.All(), src.Size(), extra)
	if m.Size() != 11 {
		t.Fatalf("Expected 11 slots, got %d", m.Size())
	}

	i := 0
	for s := range m.All() {
		if i == 10 {
			if s != extra {
				t.Errorf("Expected the extra slot last and uncopied")
			}
			break
		}
		orig := src.Query(slot.IndexKey(int32(i)))
		if s == orig {
			t.Errorf("Expected slot %d to be copied", i)
		}
		if s.Key() != orig.Key() || s.Value() != i || s.Attributes() != slot.DontEnum {
			t.Errorf("Expected copy of slot %d to keep key, value and attributes", i)
		}
		i++
	}

	// copies share the value cell at the time of copying but are independent afterwards
	m.Query(slot.IndexKey(0)).SetRawValue("changed")
	if src.Query(slot.IndexKey(0)).Value() != 0 {
		t.Errorf("Expected the source slot to keep its value")
	}
}

func TestRemoveAll(t *testing.T) {
	h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
	for i := 0; i < 5; i++ {
		_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}
	for i := 4; i >= 0; i-- {
		_, _ = h.Compute(slot.IndexKey(int32(i)), slotmap.Remove())
	}
	if !h.IsEmpty() || len(h.Slots()) != 0 {
		t.Errorf("Expected empty table, got %d slots", len(h.Slots()))
	}
	_, _ = h.Modify(slot.StringKey("again"), slot.Empty)
	if got := h.Slots(); len(got) != 1 || got[0].Key() != slot.StringKey("again") {
		t.Errorf("Expected a single slot after refilling")
	}
}
