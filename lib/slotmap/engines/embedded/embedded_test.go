package embedded_test

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/embedded"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	smtesting "github.com/ValentinKolb/dSlot/lib/slotmap/testing"
)

func newHarness(largeHashSize int) smtesting.Table {
	p := slotmap.DefaultPolicy()
	p.LargeHashSize = largeHashSize
	return smtesting.NewHarness(embedded.New(), p)
}

func Test(t *testing.T) {
	smtesting.RunSlotMapTests(t, "Embedded", newHarness)
}

func Benchmark(b *testing.B) {
	smtesting.RunSlotMapBenchmarks(b, "Embedded", newHarness)
}

func TestGrowth(t *testing.T) {
	t.Run("LazyAllocation", func(t *testing.T) {
		m := embedded.New()
		if info := m.Info(); info.Buckets != 0 {
			t.Errorf("Expected no buckets before the first insert, got %d", info.Buckets)
		}
	})

	t.Run("DoublesAtThreeQuarters", func(t *testing.T) {
		h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
		growths := events.Growths(string(slotmap.ImplEmbedded))

		// 4 buckets hold 3 slots, the 4th insert doubles
		for i := 0; i < 3; i++ {
			_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
		}
		if b := h.Map().Info().Buckets; b != 4 {
			t.Errorf("Expected 4 buckets for 3 slots, got %d", b)
		}
		_, _ = h.Modify(slot.IndexKey(3), slot.Empty)
		if b := h.Map().Info().Buckets; b != 8 {
			t.Errorf("Expected 8 buckets for 4 slots, got %d", b)
		}
		if got := events.Growths(string(slotmap.ImplEmbedded)); got <= growths {
			t.Errorf("Expected growth counter to increase")
		}
	})

	t.Run("CapacityRoundsUp", func(t *testing.T) {
		m, err := embedded.NewWithCapacity(20)
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
		if b := m.Info().Buckets; b != 32 {
			t.Errorf("Expected 32 buckets, got %d", b)
		}
	})

	t.Run("InvalidCapacity", func(t *testing.T) {
		for _, c := range []int{0, -1} {
			if _, err := embedded.NewWithCapacity(c); !errors.Is(err, slot.ErrInvalidCapacity) {
				t.Errorf("Expected InvalidCapacity for %d, got %v", c, err)
			}
		}
	})

	t.Run("ChainMetadata", func(t *testing.T) {
		h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
		for i := 0; i < 100; i++ {
			_, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
		}
		info := h.Map().Info()
		meta, ok := info.Metadata.(slotmap.ChainMetadata)
		if !ok {
			t.Fatalf("Expected ChainMetadata, got %T", info.Metadata)
		}
		if info.Size != 100 || meta.LoadFactor > 0.75 {
			t.Errorf("Expected 100 slots with load factor <= 0.75, got %d and %f", info.Size, meta.LoadFactor)
		}
		// dense indices spread perfectly over a power-of-two table
		if meta.LongestChain != 1 {
			t.Errorf("Expected chains of length 1, got %d", meta.LongestChain)
		}
	})
}

func TestPromotion(t *testing.T) {
	const threshold = 10
	h := newHarness(threshold).(*smtesting.Harness)
	before := events.Promotions(string(slotmap.ImplEmbedded), string(slotmap.ImplHashed))

	var trigger *slot.Slot
	for i := 0; i < 100 && h.Map().Implementation() == slotmap.ImplEmbedded; i++ {
		trigger, _ = h.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}

	if h.Map().Implementation() != slotmap.ImplHashed {
		t.Fatalf("Expected promotion to hashed, got %s", h.Map().Implementation())
	}
	if h.Query(trigger.Key()) != trigger {
		t.Errorf("Expected the triggering slot to be inserted as it is")
	}
	if h.Size() <= threshold {
		t.Errorf("Expected promotion only past %d slots, got %d", threshold, h.Size())
	}
	if got := events.Promotions(string(slotmap.ImplEmbedded), string(slotmap.ImplHashed)); got != before+1 {
		t.Errorf("Expected one promotion event, got %d", got-before)
	}
}
