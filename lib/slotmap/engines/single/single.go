package single

import (
	"iter"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
)

// --------------------------------------------------------------------------
// Empty Map
// --------------------------------------------------------------------------

// emptyImpl has no state, one instance is shared by every owner that never
// stored a slot. Inserting replaces it through the owner.
type emptyImpl struct{}

// Empty is the shared empty representation
var Empty slotmap.SlotMap = emptyImpl{}

func (emptyImpl) Size() int { return 0 }

func (emptyImpl) IsEmpty() bool { return true }

func (emptyImpl) Query(slot.Key) *slot.Slot { return nil }

func (emptyImpl) All() iter.Seq[*slot.Slot] { return func(func(*slot.Slot) bool) {} }

func (emptyImpl) Implementation() slotmap.Implementation { return slotmap.ImplEmpty }

// Modify creates a plain slot and installs a representation holding it
func (e emptyImpl) Modify(owner slotmap.Owner, key slot.Key, attrs slot.Attributes) *slot.Slot {
	s := slot.New(key, attrs)
	e.Add(owner, s)
	return s
}

// Compute installs the slot returned by fn, a nil result is a no-op
func (e emptyImpl) Compute(owner slotmap.Owner, key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	newSlot, err := fn(key, nil)
	if err != nil {
		return nil, err
	}
	if err := slotmap.CheckComputed(key, newSlot); err != nil {
		return nil, err
	}
	if newSlot != nil {
		e.Add(owner, newSlot)
	}
	return newSlot, nil
}

// Add installs a single entry map holding s. An owner asking for an initial
// capacity above one gets a bucket table right away.
func (emptyImpl) Add(owner slotmap.Owner, s *slot.Slot) {
	p := owner.Policy()
	if p.InitialCapacity <= 1 {
		owner.SetMap(New(s))
		return
	}
	table := newTable(p, p.InitialCapacity)
	owner.SetMap(table)
	table.Add(owner, s)
}

func (emptyImpl) SupportsFeature(feature slotmap.Feature) bool {
	return feature&supported == feature
}

func (emptyImpl) Info() slotmap.Info {
	return slotmap.Info{Implementation: slotmap.ImplEmpty, SupportedFeatures: supported.Split()}
}

// --------------------------------------------------------------------------
// Single Entry Map
// --------------------------------------------------------------------------

// singleImpl holds exactly one slot. It never changes, every structural
// update installs a new representation.
type singleImpl struct {
	slot *slot.Slot
}

// New creates a map holding only s
func New(s *slot.Slot) slotmap.SlotMap {
	return &singleImpl{slot: s}
}

func (m *singleImpl) Size() int     { return 1 }
func (m *singleImpl) IsEmpty() bool { return false }

// Query returns the slot if its key matches
//
// Thread-safety: This method is safe for optimistic readers.
func (m *singleImpl) Query(key slot.Key) *slot.Slot {
	if m.slot.Hash() == key.Hash() && m.slot.Key() == key {
		return m.slot
	}
	return nil
}

func (m *singleImpl) All() iter.Seq[*slot.Slot] {
	return func(yield func(*slot.Slot) bool) {
		yield(m.slot)
	}
}

// Modify returns the slot if the key matches, otherwise a second slot is
// created and the map promotes to a bucket table
func (m *singleImpl) Modify(owner slotmap.Owner, key slot.Key, attrs slot.Attributes) *slot.Slot {
	if s := m.Query(key); s != nil {
		return s
	}
	s := slot.New(key, attrs)
	m.Add(owner, s)
	return s
}

// Compute applies fn. Removing the slot installs the empty map, replacing it
// installs a new single entry map and inserting a second slot promotes.
func (m *singleImpl) Compute(owner slotmap.Owner, key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	existing := m.Query(key)
	newSlot, err := fn(key, existing)
	if err != nil {
		return nil, err
	}
	if err := slotmap.CheckComputed(key, newSlot); err != nil {
		return nil, err
	}

	switch {
	case existing == nil && newSlot != nil:
		m.Add(owner, newSlot)
	case existing != nil && newSlot == nil:
		owner.SetMap(Empty)
	case existing != nil && newSlot != existing:
		owner.SetMap(New(newSlot))
	}
	return newSlot, nil
}

// Add promotes to the bucket table of the owner's policy holding the current
// slot followed by s
func (m *singleImpl) Add(owner slotmap.Owner, s *slot.Slot) {
	table := newTable(owner.Policy(), 0)
	table.Add(owner, m.slot)
	owner.SetMap(table)
	table.Add(owner, s)
	events.Promoted(string(slotmap.ImplSingle), string(table.Implementation()), 2)
}

func (m *singleImpl) Implementation() slotmap.Implementation { return slotmap.ImplSingle }

func (m *singleImpl) SupportsFeature(feature slotmap.Feature) bool {
	return feature&supported == feature
}

func (m *singleImpl) Info() slotmap.Info {
	return slotmap.Info{Implementation: slotmap.ImplSingle, Size: 1, SupportedFeatures: supported.Split()}
}

const supported = slotmap.FeaturesAll | slotmap.FeaturePromotion

// newTable creates the bucket table of an owner's policy. Owners validate
// their policy when they are created, an error here is a programming error.
func newTable(p slotmap.Policy, capacity int) slotmap.SlotMap {
	table, err := engines.NewTable(p, capacity)
	if err != nil {
		panic(err)
	}
	return table
}
