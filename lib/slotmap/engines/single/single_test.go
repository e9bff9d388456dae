package single_test

import (
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/single"
	smtesting "github.com/ValentinKolb/dSlot/lib/slotmap/testing"
)

func newHarness(largeHashSize int) smtesting.Table {
	p := slotmap.DefaultPolicy()
	p.LargeHashSize = largeHashSize
	return smtesting.NewHarness(single.Empty, p)
}

func Test(t *testing.T) {
	smtesting.RunSlotMapTests(t, "Single", newHarness)
}

func TestLifecycle(t *testing.T) {
	h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)

	if h.Map() != single.Empty {
		t.Fatalf("Expected to start with the empty map")
	}

	a, _ := h.Modify(slot.StringKey("a"), slot.Empty)
	if h.Map().Implementation() != slotmap.ImplSingle {
		t.Errorf("Expected single entry map after the first insert, got %s", h.Map().Implementation())
	}

	// replacing keeps the single entry map
	replacement := slot.New(slot.StringKey("a"), slot.ReadOnly)
	_, _ = h.Compute(slot.StringKey("a"), slotmap.Replace(replacement))
	if h.Map().Implementation() != slotmap.ImplSingle || h.Query(slot.StringKey("a")) != replacement {
		t.Errorf("Expected the replacement in a single entry map")
	}
	if h.Query(slot.StringKey("a")) == a {
		t.Errorf("Expected the old slot to be gone")
	}

	// removing the only slot reinstalls the shared empty map
	_, _ = h.Compute(slot.StringKey("a"), slotmap.Remove())
	if h.Map() != single.Empty {
		t.Errorf("Expected the empty map after removing the only slot, got %s", h.Map().Implementation())
	}

	// a second key promotes to the policy's table
	_, _ = h.Modify(slot.StringKey("a"), slot.Empty)
	_, _ = h.Modify(slot.StringKey("b"), slot.Empty)
	if h.Map().Implementation() != slotmap.ImplEmbedded {
		t.Errorf("Expected embedded table for two slots, got %s", h.Map().Implementation())
	}
	if h.Size() != 2 {
		t.Errorf("Expected 2 slots, got %d", h.Size())
	}
}

func TestPolicy(t *testing.T) {
	t.Run("OrderedTable", func(t *testing.T) {
		p := slotmap.DefaultPolicy()
		p.Table = slotmap.ImplOrdered
		h := smtesting.NewHarness(single.Empty, p)
		_, _ = h.Modify(slot.StringKey("a"), slot.Empty)
		_, _ = h.Modify(slot.StringKey("b"), slot.Empty)
		if h.Map().Implementation() != slotmap.ImplOrdered {
			t.Errorf("Expected ordered table, got %s", h.Map().Implementation())
		}
	})

	t.Run("InitialCapacity", func(t *testing.T) {
		p := slotmap.DefaultPolicy()
		p.InitialCapacity = 16
		h := smtesting.NewHarness(single.Empty, p)
		_, _ = h.Modify(slot.StringKey("a"), slot.Empty)
		if h.Map().Implementation() != slotmap.ImplEmbedded {
			t.Errorf("Expected a table right away, got %s", h.Map().Implementation())
		}
		if b := h.Map().Info().Buckets; b != 16 {
			t.Errorf("Expected 16 buckets, got %d", b)
		}
	})

	t.Run("EmptyComputeNil", func(t *testing.T) {
		h := newHarness(slotmap.DefaultLargeHashSize).(*smtesting.Harness)
		_, _ = h.Compute(slot.StringKey("a"), slotmap.Remove())
		if h.Map() != single.Empty {
			t.Errorf("Expected compute returning nil to keep the empty map")
		}
	})
}
