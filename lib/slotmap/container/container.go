package container

import (
	"iter"
	"sync/atomic"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/single"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	"github.com/ValentinKolb/dSlot/lib/slotmap/stamped"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a Container
type Options struct {
	InitialCapacity int                    // bucket capacity of the first table (0 = start with a single entry map)
	LargeHashSize   int                    // promotion threshold of the bucket tables (0 = slotmap.DefaultLargeHashSize)
	Table           slotmap.Implementation // ImplEmbedded or ImplOrdered ("" = embedded)
	ThreadSafe      bool                   // shared regime with stamped locking
}

// DefaultOptions returns options for an uncontended container with the default policy
func DefaultOptions() *Options {
	p := slotmap.DefaultPolicy()
	return &Options{
		InitialCapacity: p.InitialCapacity,
		LargeHashSize:   p.LargeHashSize,
		Table:           p.Table,
		ThreadSafe:      p.ThreadSafe,
	}
}

func (o *Options) policy() slotmap.Policy {
	p := slotmap.Policy{
		InitialCapacity: o.InitialCapacity,
		LargeHashSize:   o.LargeHashSize,
		Table:           o.Table,
		ThreadSafe:      o.ThreadSafe,
	}
	if p.LargeHashSize == 0 {
		p.LargeHashSize = slotmap.DefaultLargeHashSize
	}
	if p.Table == "" {
		p.Table = slotmap.ImplEmbedded
	}
	return p
}

// --------------------------------------------------------------------------
// Core Container structure
// --------------------------------------------------------------------------

// mapRef boxes the current representation for the atomic pointer
type mapRef struct {
	m slotmap.SlotMap
}

// Container owns the representation of one object's slots and forwards every
// operation to it. Representations replace themselves through SetMap.
//
// In the uncontended regime (ThreadSafe false) no operation synchronizes and
// the container must be confined to one goroutine at a time. In the shared
// regime reads are optimistic and validated against the stamped lock, writes
// hold the lock exclusively. The lock belongs to the container, so it is the
// same lock before and after a promotion.
type Container struct {
	policy  slotmap.Policy
	lock    *stamped.Lock // nil in the uncontended regime
	current atomic.Pointer[mapRef]
}

// New creates an empty container with the specified options (optional)
func New(opts *Options) (*Container, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	p := opts.policy()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &Container{policy: p}
	if p.ThreadSafe {
		c.lock = &stamped.Lock{}
	}
	c.current.Store(&mapRef{m: single.Empty})
	return c, nil
}

// --------------------------------------------------------------------------
// Owner Interface
// --------------------------------------------------------------------------

// SetMap installs m as the current representation. It is called by the
// representations from inside a write operation.
func (c *Container) SetMap(m slotmap.SlotMap) {
	c.current.Store(&mapRef{m: m})
}

// Policy returns the policy of the container
func (c *Container) Policy() slotmap.Policy {
	return c.policy
}

func (c *Container) getMap() slotmap.SlotMap {
	return c.current.Load().m
}

// ThreadSafe reports whether the container uses the shared regime
func (c *Container) ThreadSafe() bool {
	return c.lock != nil
}

// --------------------------------------------------------------------------
// Locking Helpers
// --------------------------------------------------------------------------

// optimistic runs read without a lock and validates the stamp afterwards.
// If a writer interfered read runs again under the read lock.
func optimistic[T any](c *Container, read func(slotmap.SlotMap) T) T {
	if c.lock == nil {
		return read(c.getMap())
	}

	if stamp, ok := c.lock.TryOptimisticRead(); ok {
		v := read(c.getMap())
		if c.lock.Validate(stamp) {
			return v
		}
	}

	events.OptimisticFallback()
	c.lock.RLock()
	defer c.lock.RUnlock()
	return read(c.getMap())
}

func (c *Container) writeLock() {
	if c.lock != nil {
		c.lock.Lock()
	}
}

func (c *Container) writeUnlock() {
	if c.lock != nil {
		c.lock.Unlock()
	}
}

// --------------------------------------------------------------------------
// Query Operations
// --------------------------------------------------------------------------

// Size returns the number of slots
//
// Thread-safety: Optimistic in the shared regime.
func (c *Container) Size() int {
	return optimistic(c, slotmap.SlotMap.Size)
}

// IsEmpty reports whether the container has no slots
//
// Thread-safety: Optimistic in the shared regime.
func (c *Container) IsEmpty() bool {
	return optimistic(c, slotmap.SlotMap.IsEmpty)
}

// Query returns the slot stored under key or nil. It never changes the table.
//
// Thread-safety: Optimistic in the shared regime. A validated result was
// read from a consistent table, the value inside the slot may still change.
func (c *Container) Query(key slot.Key) *slot.Slot {
	return optimistic(c, func(m slotmap.SlotMap) *slot.Slot {
		return m.Query(key)
	})
}

// Implementation names the current representation
func (c *Container) Implementation() slotmap.Implementation {
	return optimistic(c, slotmap.SlotMap.Implementation)
}

// SupportsFeature checks the features of the current representation. The
// shared regime adds slotmap.FeatureOptimisticRead.
func (c *Container) SupportsFeature(feature slotmap.Feature) bool {
	if c.lock != nil {
		feature &^= slotmap.FeatureOptimisticRead
	} else if feature&slotmap.FeatureOptimisticRead != 0 {
		return false
	}
	return optimistic(c, func(m slotmap.SlotMap) bool {
		return m.SupportsFeature(feature)
	})
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Modify returns the slot stored under key, creating a plain slot with attrs
// if there is none. Invalid attributes are rejected before any change.
func (c *Container) Modify(key slot.Key, attrs slot.Attributes) (*slot.Slot, error) {
	if err := slot.CheckAttributes(attrs); err != nil {
		return nil, err
	}
	c.writeLock()
	defer c.writeUnlock()
	return c.getMap().Modify(c, key, attrs), nil
}

// Compute applies fn to the slot stored under key and performs exactly one
// of no-op, insert, replace or remove (see slotmap.SlotMap.Compute).
//
// Thread-safety: fn runs while the write lock is held and must not call back
// into the container.
func (c *Container) Compute(key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	c.writeLock()
	defer c.writeUnlock()
	return c.getMap().Compute(c, key, fn)
}

// Remove deletes the slot stored under key and reports whether it existed
func (c *Container) Remove(key slot.Key) bool {
	c.writeLock()
	defer c.writeUnlock()
	m := c.getMap()
	if m.Query(key) == nil {
		return false
	}
	_, _ = m.Compute(c, key, slotmap.Remove())
	return true
}

// Add inserts a slot whose key the caller knows to be absent
func (c *Container) Add(s *slot.Slot) error {
	if s == nil {
		return slot.NewError(slot.RetCInvalidOperation, "cannot add a nil slot")
	}
	if err := slot.CheckAttributes(s.Attributes()); err != nil {
		return err
	}
	c.writeLock()
	defer c.writeUnlock()
	c.getMap().Add(c, s)
	return nil
}

// --------------------------------------------------------------------------
// Iteration
// --------------------------------------------------------------------------

// ReadLock acquires the iteration guard. In the shared regime All may only be
// used between ReadLock and UnlockRead, writers wait until the guard is
// released. In the uncontended regime the guard does nothing.
func (c *Container) ReadLock() stamped.Stamp {
	if c.lock == nil {
		return 0
	}
	return c.lock.ReadLock()
}

// UnlockRead releases the iteration guard
func (c *Container) UnlockRead(stamp stamped.Stamp) {
	if c.lock != nil {
		c.lock.UnlockRead(stamp)
	}
}

// All returns the slots in insertion order.
//
// Thread-safety: Requires the iteration guard in the shared regime. Slots
// must not be added or removed during the traversal unless the current
// representation supports slotmap.FeatureMutationDuringIteration, use Slots
// to mutate while traversing.
func (c *Container) All() iter.Seq[*slot.Slot] {
	return c.getMap().All()
}

// Slots returns a copy of the slot list in insertion order, taken under the
// iteration guard. The container may be changed freely while the copy is used.
func (c *Container) Slots() []*slot.Slot {
	stamp := c.ReadLock()
	defer c.UnlockRead(stamp)

	m := c.getMap()
	slots := make([]*slot.Slot, 0, m.Size())
	for s := range m.All() {
		slots = append(slots, s)
	}
	return slots
}

// Info returns statistics about the current representation
func (c *Container) Info() slotmap.Info {
	stamp := c.ReadLock()
	defer c.UnlockRead(stamp)

	info := c.getMap().Info()
	if c.lock != nil {
		info.SupportedFeatures = append(info.SupportedFeatures, slotmap.FeatureOptimisticRead)
	}
	return info
}
