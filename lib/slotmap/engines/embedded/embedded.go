package embedded

import (
	"iter"
	"sync/atomic"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/hashed"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/internal/buckets"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
)

// --------------------------------------------------------------------------
// Core Embedded table structure
// --------------------------------------------------------------------------

// embeddedImpl stores slots in open bucket chains linked through the slots
// themselves. The insertion order is a forward list through
// slot.OrderedNext from first to last.
type embeddedImpl struct {
	table atomic.Pointer[buckets.Table] // nil until the first insert
	count atomic.Int64
	first *slot.Slot
	last  *slot.Slot
}

// New creates an empty table. The bucket array is allocated on first insert.
func New() slotmap.SlotMap {
	return &embeddedImpl{}
}

// NewWithCapacity creates a table whose bucket array holds capacity rounded up
// to a power of two
func NewWithCapacity(capacity int) (slotmap.SlotMap, error) {
	if capacity <= 0 {
		return nil, slot.Errorf(slot.RetCInvalidCapacity, "capacity must be positive: %d", capacity)
	}
	e := &embeddedImpl{}
	e.table.Store(buckets.NewTable(util.NextPowerOfTwo(capacity)))
	return e, nil
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

// Size returns the number of slots
//
// Thread-safety: This method is safe for optimistic readers.
func (e *embeddedImpl) Size() int {
	return int(e.count.Load())
}

// IsEmpty reports whether the table has no slots
//
// Thread-safety: This method is safe for optimistic readers.
func (e *embeddedImpl) IsEmpty() bool {
	return e.count.Load() == 0
}

// Query returns the slot stored under key or nil
//
// Thread-safety: This method is safe for optimistic readers. A reader racing
// a writer may miss a slot, which the stamp validation of the caller detects.
func (e *embeddedImpl) Query(key slot.Key) *slot.Slot {
	t := e.table.Load()
	if t == nil {
		return nil
	}
	s, _ := t.Lookup(key)
	return s
}

// All returns the slots in insertion order
//
// Thread-safety: Requires a read guard in the shared regime.
func (e *embeddedImpl) All() iter.Seq[*slot.Slot] {
	return func(yield func(*slot.Slot) bool) {
		for s := e.first; s != nil; {
			// fetch the successor first, yield may remove s
			next := s.OrderedNext()
			if !yield(s) {
				return
			}
			s = next
		}
	}
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Modify returns the slot stored under key or inserts a new plain slot. The
// insert may promote the table, in which case the new slot lives in the
// replacement installed through owner.
func (e *embeddedImpl) Modify(owner slotmap.Owner, key slot.Key, attrs slot.Attributes) *slot.Slot {
	if t := e.table.Load(); t != nil {
		if s, _ := t.Lookup(key); s != nil {
			return s
		}
	}
	s := slot.New(key, attrs)
	e.createSlot(owner, s)
	return s
}

// Compute runs fn against the current slot and applies its result
func (e *embeddedImpl) Compute(owner slotmap.Owner, key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	var existing, prev *slot.Slot
	t := e.table.Load()
	if t != nil {
		existing, prev = t.Lookup(key)
	}

	newSlot, err := fn(key, existing)
	if err != nil {
		return nil, err
	}
	if err := slotmap.CheckComputed(key, newSlot); err != nil {
		return nil, err
	}

	switch {
	case existing == nil && newSlot != nil:
		e.createSlot(owner, newSlot)
	case existing != nil && newSlot == nil:
		e.removeSlot(t, existing, prev)
	case existing != nil && newSlot != existing:
		t.Replace(existing, prev, newSlot)
		e.replaceOrdered(existing, newSlot)
	}
	return newSlot, nil
}

// Add inserts a slot whose key is known to be absent
func (e *embeddedImpl) Add(owner slotmap.Owner, s *slot.Slot) {
	e.createSlot(owner, s)
}

// createSlot grows the bucket array if needed and inserts s. Past the large
// hash size the table replaces itself with a hashed table instead of growing.
func (e *embeddedImpl) createSlot(owner slotmap.Owner, s *slot.Slot) {
	t := e.table.Load()
	if t == nil {
		t = buckets.NewTable(buckets.InitialSize)
		e.table.Store(t)
	}

	count := e.Size()
	if t.NeedsGrowth(count) {
		if count > owner.Policy().LargeHashSize {
			owner.SetMap(hashed.FromSlots(e.All(), count, s))
			events.Promoted(string(slotmap.ImplEmbedded), string(slotmap.ImplHashed), count+1)
			return
		}
		t = t.Grow()
		e.table.Store(t)
		events.Grew(string(slotmap.ImplEmbedded), t.Len())
	}

	// the order list first, the chain insert publishes the slot
	s.SetOrderedNext(nil)
	if e.last != nil {
		e.last.SetOrderedNext(s)
	}
	if e.first == nil {
		e.first = s
	}
	e.last = s
	t.Insert(s)
	e.count.Add(1)
}

// removeSlot unlinks s from its chain and from the order list. The order
// list is singly linked, so this scans from the first slot.
func (e *embeddedImpl) removeSlot(t *buckets.Table, s, prev *slot.Slot) {
	t.Unlink(s, prev)
	e.count.Add(-1)

	var before *slot.Slot
	if s == e.first {
		e.first = s.OrderedNext()
	} else {
		before = e.first
		for before.OrderedNext() != s {
			before = before.OrderedNext()
		}
		before.SetOrderedNext(s.OrderedNext())
	}
	if s == e.last {
		e.last = before
	}
}

// replaceOrdered puts newSlot at the order position of old
func (e *embeddedImpl) replaceOrdered(old, newSlot *slot.Slot) {
	newSlot.SetOrderedNext(old.OrderedNext())
	if old == e.first {
		e.first = newSlot
	} else {
		for before := e.first; before != nil; before = before.OrderedNext() {
			if before.OrderedNext() == old {
				before.SetOrderedNext(newSlot)
				break
			}
		}
	}
	if old == e.last {
		e.last = newSlot
	}
}

// --------------------------------------------------------------------------
// Feature Support
// --------------------------------------------------------------------------

const supported = slotmap.FeaturesAll | slotmap.FeaturePromotion

// Implementation names the representation
func (e *embeddedImpl) Implementation() slotmap.Implementation {
	return slotmap.ImplEmbedded
}

// SupportsFeature checks if the representation supports all given features
func (e *embeddedImpl) SupportsFeature(feature slotmap.Feature) bool {
	return feature&supported == feature
}

// Info returns statistics about the table including the chain lengths
func (e *embeddedImpl) Info() slotmap.Info {
	info := slotmap.Info{
		Implementation:    slotmap.ImplEmbedded,
		Size:              e.Size(),
		SupportedFeatures: supported.Split(),
	}
	if t := e.table.Load(); t != nil {
		info.Buckets = t.Len()
		info.Metadata = slotmap.NewChainMetadata(t.Heads(), info.Size)
	}
	return info
}
