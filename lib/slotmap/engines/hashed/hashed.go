package hashed

import (
	"iter"
	"sync/atomic"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type
// --------------------------------------------------------------------------

// entry wraps a slot with the insertion-order links. The slot pointer is
// atomic because a compute replacement swaps it while optimistic readers may
// still load it; prev, next and removed are only touched by the owner of the
// table (exclusive lock or the confining goroutine).
type entry struct {
	slot    atomic.Pointer[slot.Slot]
	prev    *entry
	next    *entry
	removed bool
}

// --------------------------------------------------------------------------
// Core Hashed table structure
// --------------------------------------------------------------------------

// hashedImpl is the collision tolerant representation. Identity lookups go
// through a xsync.MapOf keyed by slot.Key, so keys with equal hashes only cost
// an equality check and a concurrent reader never trips over a resize. The
// insertion order is kept in a doubly linked list of entries so that removal
// relinks in O(1).
type hashedImpl struct {
	data  *xsync.MapOf[slot.Key, *entry]
	first *entry
	last  *entry
	count atomic.Int64

	// removed entries that were the tail when unlinked, their forward link
	// is set by the next insert
	dangling []*entry
}

// New creates an empty hashed table presized for capacity slots
func New(capacity int) slotmap.SlotMap {
	return newHashed(capacity)
}

// FromSlots builds a hashed table out of the given slots (in order) followed
// by extra (may be nil). The slots are copied with their table links cleared,
// extra is inserted as it is.
//
// Thread-safety: The source must not change while it is copied.
func FromSlots(slots iter.Seq[*slot.Slot], capacity int, extra *slot.Slot) slotmap.SlotMap {
	h := newHashed(capacity + 1)
	for s := range slots {
		h.insert(s.Copy())
	}
	if extra != nil {
		h.insert(extra)
	}
	return h
}

func newHashed(capacity int) *hashedImpl {
	var opts []func(*xsync.MapConfig)
	if capacity > 0 {
		opts = append(opts, xsync.WithPresize(capacity))
	}
	return &hashedImpl{
		data: xsync.NewMapOfWithHasher[slot.Key, *entry](createKeyHasher(), opts...),
	}
}

// createKeyHasher spreads the 32 bit key hash over the full word and mixes in
// the map seed. The multiplication keeps dense index keys from sharing the
// upper bits xsync uses for its bucket metadata.
func createKeyHasher() func(slot.Key, uint64) uint64 {
	return func(key slot.Key, mapSeed uint64) uint64 {
		return (uint64(uint32(key.Hash())) ^ mapSeed) * 0x9e3779b97f4a7c15
	}
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

// Size returns the number of slots
//
// Thread-safety: This method is safe for optimistic readers.
func (h *hashedImpl) Size() int {
	return int(h.count.Load())
}

// IsEmpty reports whether the table has no slots
func (h *hashedImpl) IsEmpty() bool {
	return h.count.Load() == 0
}

// Query returns the slot stored under key or nil
//
// Thread-safety: This method is safe for optimistic readers.
func (h *hashedImpl) Query(key slot.Key) *slot.Slot {
	e, ok := h.data.Load(key)
	if !ok {
		return nil
	}
	return e.slot.Load()
}

// All returns the slots in insertion order. The traversal tolerates removal
// and insertion while it is running: removed entries keep their forward link
// and are skipped, entries appended later are visited. This holds even when
// the entry the traversal is positioned on was the tail when it got removed.
//
// Thread-safety: Requires a read guard in the shared regime.
func (h *hashedImpl) All() iter.Seq[*slot.Slot] {
	return func(yield func(*slot.Slot) bool) {
		for e := h.first; e != nil; e = e.next {
			if e.removed {
				continue
			}
			if !yield(e.slot.Load()) {
				return
			}
		}
	}
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Modify returns the slot stored under key or inserts a new plain slot
func (h *hashedImpl) Modify(_ slotmap.Owner, key slot.Key, attrs slot.Attributes) *slot.Slot {
	if e, ok := h.data.Load(key); ok {
		return e.slot.Load()
	}
	s := slot.New(key, attrs)
	h.insert(s)
	return s
}

// Compute runs fn against the current slot and applies its result
func (h *hashedImpl) Compute(_ slotmap.Owner, key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	e, found := h.data.Load(key)

	var existing *slot.Slot
	if found {
		existing = e.slot.Load()
	}

	newSlot, err := fn(key, existing)
	if err != nil {
		return nil, err
	}
	if err := slotmap.CheckComputed(key, newSlot); err != nil {
		return nil, err
	}

	switch {
	case !found && newSlot != nil:
		h.insert(newSlot)
	case found && newSlot == nil:
		h.remove(e)
	case found && newSlot != existing:
		// the entry keeps its place in the order list
		e.slot.Store(newSlot)
	}
	return newSlot, nil
}

// Add inserts a slot whose key is known to be absent
func (h *hashedImpl) Add(_ slotmap.Owner, s *slot.Slot) {
	h.insert(s)
}

// insert appends s at the end of the order list and publishes it in the map
func (h *hashedImpl) insert(s *slot.Slot) {
	e := &entry{prev: h.last}
	e.slot.Store(s)
	if h.last == nil {
		h.first = e
	} else {
		h.last.next = e
	}
	h.last = e
	for _, d := range h.dangling {
		d.next = e
	}
	clear(h.dangling)
	h.dangling = h.dangling[:0]
	h.data.Store(s.Key(), e)
	h.count.Add(1)
}

// remove unlinks e from the map and the order list. The forward link of e is
// left in place for traversals positioned on it; a removed tail is linked to
// the next inserted entry.
func (h *hashedImpl) remove(e *entry) {
	h.data.Delete(e.slot.Load().Key())
	e.removed = true
	if e.prev == nil {
		h.first = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		h.last = e.prev
		h.dangling = append(h.dangling, e)
	} else {
		e.next.prev = e.prev
	}
	h.count.Add(-1)
}

// --------------------------------------------------------------------------
// Feature Support
// --------------------------------------------------------------------------

// Implementation names the representation
func (h *hashedImpl) Implementation() slotmap.Implementation {
	return slotmap.ImplHashed
}

// SupportsFeature checks if the representation supports all given features
func (h *hashedImpl) SupportsFeature(feature slotmap.Feature) bool {
	supported := slotmap.FeaturesAll | slotmap.FeatureMutationDuringIteration
	return feature&supported == feature
}

// HashedMetadata is the table specific part of Info
type HashedMetadata struct {
	MapSize int `json:"map_size"`
}

// Info returns statistics about the table
func (h *hashedImpl) Info() slotmap.Info {
	supported := slotmap.FeaturesAll | slotmap.FeatureMutationDuringIteration
	return slotmap.Info{
		Implementation:    slotmap.ImplHashed,
		Size:              h.Size(),
		SupportedFeatures: supported.Split(),
		Metadata:          HashedMetadata{MapSize: h.data.Size()},
	}
}
