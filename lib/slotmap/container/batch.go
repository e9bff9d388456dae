package container

import (
	"iter"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
)

// Batch runs several operations under one lock acquisition. A write batch
// holds the exclusive lock, a read batch the read lock and rejects mutations.
//
// The batch keeps the representation it operates on and fetches the current
// one again after every operation that may have replaced it, so an insert
// that promotes the table is visible to the next step of the same batch.
//
// Thread-safety: A batch is used by the goroutine that opened it. Close must
// be called exactly once on every path, WithBatch does that.
type Batch struct {
	c      *Container
	m      slotmap.SlotMap
	write  bool
	closed bool
}

// OpenBatch acquires the write lock and returns a batch for reads and writes
func (c *Container) OpenBatch() *Batch {
	c.writeLock()
	return &Batch{c: c, m: c.getMap(), write: true}
}

// OpenReadBatch acquires the read lock and returns a read-only batch
func (c *Container) OpenReadBatch() *Batch {
	if c.lock != nil {
		c.lock.RLock()
	}
	return &Batch{c: c, m: c.getMap()}
}

// WithBatch runs fn inside a write batch. The lock is released when fn
// returns or panics.
func (c *Container) WithBatch(fn func(b *Batch) error) error {
	b := c.OpenBatch()
	defer b.Close()
	return fn(b)
}

// WithReadBatch runs fn inside a read batch. The lock is released when fn
// returns or panics.
func (c *Container) WithReadBatch(fn func(b *Batch) error) error {
	b := c.OpenReadBatch()
	defer b.Close()
	return fn(b)
}

// Close releases the lock. Closing a closed batch does nothing.
func (b *Batch) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.m = nil
	if b.write {
		b.c.writeUnlock()
	} else if b.c.lock != nil {
		b.c.lock.RUnlock()
	}
}

// IsWrite reports whether the batch may mutate
func (b *Batch) IsWrite() bool {
	return b.write
}

// refresh picks up a representation installed by the last operation
func (b *Batch) refresh() {
	b.m = b.c.getMap()
}

func (b *Batch) checkOpen() error {
	if b.closed {
		return slot.NewError(slot.RetCInvalidOperation, "batch is closed")
	}
	return nil
}

func (b *Batch) checkWrite() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !b.write {
		return slot.NewError(slot.RetCInvalidOperation, "mutation in a read batch")
	}
	return nil
}

// --------------------------------------------------------------------------
// Batch Operations
// --------------------------------------------------------------------------

// Size returns the number of slots
func (b *Batch) Size() (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	return b.m.Size(), nil
}

// Query returns the slot stored under key or nil
func (b *Batch) Query(key slot.Key) (*slot.Slot, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return b.m.Query(key), nil
}

// Modify returns the slot stored under key, creating it if absent
func (b *Batch) Modify(key slot.Key, attrs slot.Attributes) (*slot.Slot, error) {
	if err := b.checkWrite(); err != nil {
		return nil, err
	}
	if err := slot.CheckAttributes(attrs); err != nil {
		return nil, err
	}
	s := b.m.Modify(b.c, key, attrs)
	b.refresh()
	return s, nil
}

// Compute applies fn to the slot stored under key
func (b *Batch) Compute(key slot.Key, fn slotmap.ComputeFunc) (*slot.Slot, error) {
	if err := b.checkWrite(); err != nil {
		return nil, err
	}
	s, err := b.m.Compute(b.c, key, fn)
	b.refresh()
	return s, err
}

// Add inserts a slot whose key is known to be absent
func (b *Batch) Add(s *slot.Slot) error {
	if err := b.checkWrite(); err != nil {
		return err
	}
	if s == nil {
		return slot.NewError(slot.RetCInvalidOperation, "cannot add a nil slot")
	}
	b.m.Add(b.c, s)
	b.refresh()
	return nil
}

// All returns the slots in insertion order. The sequence is only valid until
// the batch is closed.
func (b *Batch) All() iter.Seq[*slot.Slot] {
	if b.closed {
		return func(func(*slot.Slot) bool) {}
	}
	return b.m.All()
}

// Implementation names the representation the batch currently operates on
func (b *Batch) Implementation() slotmap.Implementation {
	if b.closed {
		return ""
	}
	return b.m.Implementation()
}
