package ordered

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
// Constants
// --------------------------------------------------------------------------

const (
	initialOrderedSize = 4  // first size of the positional array
	maxDeletedSlots    = 10 // tombstones tolerated before the table compacts into a hashed table
)

// deleted marks a removed position. Positions are never reused.
var deleted = slot.New(slot.IndexKey(0), slot.Empty)

// --------------------------------------------------------------------------
// Core Ordered table structure
// --------------------------------------------------------------------------

// orderedImpl separates the identity index (bucket chains) from a dense
// positional array holding the slots in insertion order. Removal leaves a
// tombstone in the positional array instead of relinking an order list.
type orderedImpl struct {
	table atomic.Pointer[buckets.Table] // nil until the first insert
	count atomic.Int64

	ordered      []*slot.Slot // insertion order including tombstones
	orderedCount int          // used positions of ordered
	deleteCount  int          // tombstones created so far
}

// New creates an empty table. The arrays are allocated on first insert.
func New() slotmap.SlotMap {
	return &orderedImpl{}
}

// NewWithCapacity creates a table whose bucket array holds capacity rounded up
// to a power of two
func NewWithCapacity(capacity int) (slotmap.SlotMap, error) {
	if capacity <= 0 {
		return nil, slot.Errorf(slot.RetCInvalidCapacity, "capacity must be positive: %d", capacity)
	}
	o := &orderedImpl{}
	o.table.Store(buckets.NewTable(util.NextPowerOfTwo(capacity)))
	return o, nil
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

// Size returns the number of slots
//
// Thread-safety: This method is safe for optimistic readers.
func (o *orderedImpl) Size() int {
	return int(o.count.Load())
}

// IsEmpty reports whether the table has no slots
//
// Thread-safety: This method is safe for optimistic readers.
func (o *orderedImpl) IsEmpty() bool {
	return o.count.Load() == 0
}

// Query returns the slot stored under key or nil
//
// Thread-safety: This method is safe for optimistic readers.
func (o *orderedImpl) Query(key slot.Key) *slot.Slot {
	t := o.table.Load()
	if t == nil {
		return nil
	}
	s, _ := t.Lookup(key)
	return s
}

// All returns the slots in insertion order skipping tombstones. Positions are
// re-read on every step and never reused, but a removal may compact and an
// insertion may promote the table into a different representation that the
// running traversal does not follow. Use a copy of the slots to mutate while
// traversing.
//
// Thread-safety: Requires a read guard in the shared regime.
func (o *orderedImpl) All() iter.Seq[*slot.Slot] {
	return func(yield func(*slot.Slot) bool) {
		for pos := 0; pos < o.orderedCount; pos++ {
			s := o.ordered[pos]
			if s == deleted {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Modify returns the slot stored under key or inserts a new plain slot
func (o *orderedImpl) Modify(owner slotmap.Owner, key slot.Key, attrs slot.Attributes) *slot.Slot {
	if t := o.table.Load(); t != nil {
		if s, _ := t.Lookup(key); s != nil {
			return s
		}
	}
	s := slot.New(key, attrs)
	o.createSlot(owner, s)
	return s
}

// Compute runs fn against the current slot and applies its result
func (o *orderedImpl) Compute(owner slotmap.Owner, key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	var existing, prev *slot.Slot
	t := o.table.Load()
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
		o.createSlot(owner, newSlot)
	case existing != nil && newSlot == nil:
		o.removeSlot(owner, t, existing, prev)
	case existing != nil && newSlot != existing:
		newSlot.SetOrderedPos(existing.OrderedPos())
		o.ordered[existing.OrderedPos()] = newSlot
		t.Replace(existing, prev, newSlot)
	}
	return newSlot, nil
}

// Add inserts a slot whose key is known to be absent
func (o *orderedImpl) Add(owner slotmap.Owner, s *slot.Slot) {
	o.createSlot(owner, s)
}

func (o *orderedImpl) createSlot(owner slotmap.Owner, s *slot.Slot) {
	t := o.table.Load()
	if t == nil {
		t = buckets.NewTable(buckets.InitialSize)
		o.table.Store(t)
	}

	count := o.Size()
	if t.NeedsGrowth(count) {
		if count > owner.Policy().LargeHashSize {
			owner.SetMap(hashed.FromSlots(o.All(), count, s))
			events.Promoted(string(slotmap.ImplOrdered), string(slotmap.ImplHashed), count+1)
			return
		}
		t = t.Grow()
		o.table.Store(t)
		events.Grew(string(slotmap.ImplOrdered), t.Len())
	}

	if o.ordered == nil {
		o.ordered = make([]*slot.Slot, initialOrderedSize)
	}
	if o.orderedCount == len(o.ordered) {
		grown := make([]*slot.Slot, len(o.ordered)*2)
		copy(grown, o.ordered[:o.orderedCount])
		o.ordered = grown
	}
	s.SetOrderedPos(o.orderedCount)
	o.ordered[o.orderedCount] = s
	o.orderedCount++

	t.Insert(s)
	o.count.Add(1)
}

// removeSlot unlinks s and leaves a tombstone at its position. Too many
// tombstones make the table compact itself into a hashed table.
func (o *orderedImpl) removeSlot(owner slotmap.Owner, t *buckets.Table, s, prev *slot.Slot) {
	t.Unlink(s, prev)
	o.count.Add(-1)
	o.ordered[s.OrderedPos()] = deleted

	o.deleteCount++
	if o.deleteCount > maxDeletedSlots {
		owner.SetMap(hashed.FromSlots(o.All(), o.Size(), nil))
		events.Compacted(string(slotmap.ImplOrdered), string(slotmap.ImplHashed), o.deleteCount)
	}
}

// --------------------------------------------------------------------------
// Feature Support
// --------------------------------------------------------------------------

const supported = slotmap.FeaturesAll | slotmap.FeaturePromotion | slotmap.FeatureTombstones

// Implementation names the representation
func (o *orderedImpl) Implementation() slotmap.Implementation {
	return slotmap.ImplOrdered
}

// SupportsFeature checks if the representation supports all given features
func (o *orderedImpl) SupportsFeature(feature slotmap.Feature) bool {
	return feature&supported == feature
}

// OrderedMetadata extends the chain statistics with the positional array state
type OrderedMetadata struct {
	slotmap.ChainMetadata
	Positions  int `json:"positions"`
	Tombstones int `json:"tombstones"`
}

// Info returns statistics about the table
func (o *orderedImpl) Info() slotmap.Info {
	info := slotmap.Info{
		Implementation:    slotmap.ImplOrdered,
		Size:              o.Size(),
		SupportedFeatures: supported.Split(),
	}
	if t := o.table.Load(); t != nil {
		info.Buckets = t.Len()
		info.Metadata = OrderedMetadata{
			ChainMetadata: slotmap.NewChainMetadata(t.Heads(), info.Size),
			Positions:     o.orderedCount,
			Tombstones:    o.orderedCount - info.Size,
		}
	}
	return info
}
