package testing

import (
	"iter"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
)

// Table is the surface exercised by the test suite. It is implemented by
// container.Container and by Harness, which drives a bare representation.
type Table interface {
	Size() int
	IsEmpty() bool
	Query(key slot.Key) *slot.Slot
	Modify(key slot.Key, attrs slot.Attributes) (*slot.Slot, error)
	Compute(key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error)
	Add(s *slot.Slot) error
	All() iter.Seq[*slot.Slot]
	Slots() []*slot.Slot
	Implementation() slotmap.Implementation
	SupportsFeature(feature slotmap.Feature) bool
	ThreadSafe() bool
}

// TableFactory creates an empty table that promotes after largeHashSize slots
type TableFactory func(largeHashSize int) Table

// Harness owns a representation the way a container does, without any
// locking. It lets the suite run against a single representation.
type Harness struct {
	m      slotmap.SlotMap
	policy slotmap.Policy
}

// NewHarness wraps m. Promotions performed by m use p.
func NewHarness(m slotmap.SlotMap, p slotmap.Policy) *Harness {
	return &Harness{m: m, policy: p}
}

// SetMap implements slotmap.Owner
func (h *Harness) SetMap(m slotmap.SlotMap) { h.m = m }

// Policy implements slotmap.Owner
func (h *Harness) Policy() slotmap.Policy { return h.policy }

// Map returns the current representation
func (h *Harness) Map() slotmap.SlotMap { return h.m }

func (h *Harness) Size() int { return h.m.Size() }

func (h *Harness) IsEmpty() bool { return h.m.IsEmpty() }

func (h *Harness) Query(key slot.Key) *slot.Slot { return h.m.Query(key) }

func (h *Harness) Modify(key slot.Key, attrs slot.Attributes) (*slot.Slot, error) {
	if err := slot.CheckAttributes(attrs); err != nil {
		return nil, err
	}
	return h.m.Modify(h, key, attrs), nil
}

func (h *Harness) Compute(key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	return h.m.Compute(h, key, fn)
}

func (h *Harness) Add(s *slot.Slot) error {
	h.m.Add(h, s)
	return nil
}

func (h *Harness) All() iter.Seq[*slot.Slot] { return h.m.All() }

func (h *Harness) Slots() []*slot.Slot {
	var slots []*slot.Slot
	for s := range h.m.All() {
		slots = append(slots, s)
	}
	return slots
}

func (h *Harness) Implementation() slotmap.Implementation { return h.m.Implementation() }

func (h *Harness) SupportsFeature(feature slotmap.Feature) bool { return h.m.SupportsFeature(feature) }

func (h *Harness) ThreadSafe() bool { return false }
