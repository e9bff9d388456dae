package buckets

import (
	"sync/atomic"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
)

// InitialSize is the bucket count of a table allocated on first insert
const InitialSize = 4

// Table is a power-of-two sized array of bucket chains linked through
// slot.Next. Heads are atomic so that optimistic readers can walk a table
// while the single writer relinks it.
type Table struct {
	heads []atomic.Pointer[slot.Slot]
}

// NewTable creates a table with size buckets, size must be a power of two
func NewTable(size int) *Table {
	return &Table{heads: make([]atomic.Pointer[slot.Slot], size)}
}

// Len returns the number of buckets
func (t *Table) Len() int {
	return len(t.heads)
}

// NeedsGrowth reports whether inserting one more slot into a table holding
// count slots exceeds the 3/4 load factor
func (t *Table) NeedsGrowth(count int) bool {
	return 4*(count+1) > 3*len(t.heads)
}

// Lookup returns the slot stored under key and its predecessor in the chain.
// prev is nil if the slot is the chain head.
func (t *Table) Lookup(key slot.Key) (s, prev *slot.Slot) {
	hash := key.Hash()
	for s = t.heads[util.BucketIndex(hash, len(t.heads))].Load(); s != nil; s = s.Next() {
		if s.Hash() == hash && s.Key() == key {
			return s, prev
		}
		prev = s
	}
	return nil, nil
}

// Insert links s at the head of its chain. The key must be absent.
func (t *Table) Insert(s *slot.Slot) {
	head := &t.heads[util.BucketIndex(s.Hash(), len(t.heads))]
	s.SetNext(head.Load())
	head.Store(s)
}

// Unlink removes s (found with predecessor prev) from its chain
func (t *Table) Unlink(s, prev *slot.Slot) {
	if prev == nil {
		t.heads[util.BucketIndex(s.Hash(), len(t.heads))].Store(s.Next())
	} else {
		prev.SetNext(s.Next())
	}
}

// Replace puts newSlot in the chain position of old. The successor is linked
// before newSlot is published so a concurrent walk never sees a cut chain.
func (t *Table) Replace(old, prev, newSlot *slot.Slot) {
	newSlot.SetNext(old.Next())
	if prev == nil {
		t.heads[util.BucketIndex(old.Hash(), len(t.heads))].Store(newSlot)
	} else {
		prev.SetNext(newSlot)
	}
}

// Grow returns a table with twice the buckets holding the same slot objects.
// Moved slots only ever point at slots moved before them, so chains stay
// acyclic for readers still walking the old table.
func (t *Table) Grow() *Table {
	grown := NewTable(len(t.heads) * 2)
	for i := range t.heads {
		s := t.heads[i].Load()
		for s != nil {
			next := s.Next()
			grown.Insert(s)
			s = next
		}
	}
	return grown
}

// Heads returns the chain heads, used for statistics
func (t *Table) Heads() []*slot.Slot {
	heads := make([]*slot.Slot, len(t.heads))
	for i := range t.heads {
		heads[i] = t.heads[i].Load()
	}
	return heads
}
