package slotmap

import (
	"iter"

	"github.com/ValentinKolb/dSlot/lib/slot"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplEmpty    Implementation = "empty"
	ImplSingle   Implementation = "single"
	ImplEmbedded Implementation = "embedded"
	ImplOrdered  Implementation = "ordered"
	ImplHashed   Implementation = "hashed"
)

// DefaultLargeHashSize is the slot count after which bucket tables are
// replaced by the hashed representation instead of growing again
const DefaultLargeHashSize = 2000

// ComputeFunc receives the slot currently stored under key (nil if absent)
// and returns the slot that should be stored afterwards. Returning nil
// removes an existing slot, returning existing leaves the table unchanged.
// A returned error aborts the call without any change.
type ComputeFunc func(key slot.Key, existing *slot.Slot) (*slot.Slot, error)

// Policy controls which representations are created and when they promote
type Policy struct {
	InitialCapacity int            // bucket capacity of the first table (0 = start with a single-entry map)
	LargeHashSize   int            // promotion threshold of the bucket tables
	Table           Implementation // ImplEmbedded or ImplOrdered
	ThreadSafe      bool           // tables are shared between goroutines
}

// DefaultPolicy returns the policy used when none is given
func DefaultPolicy() Policy {
	return Policy{
		InitialCapacity: 0,
		LargeHashSize:   DefaultLargeHashSize,
		Table:           ImplEmbedded,
	}
}

// Validate rejects negative capacities, non-positive thresholds and unknown table kinds
func (p Policy) Validate() error {
	if p.InitialCapacity < 0 {
		return slot.Errorf(slot.RetCInvalidCapacity, "initial capacity must not be negative: %d", p.InitialCapacity)
	}
	if p.LargeHashSize <= 0 {
		return slot.Errorf(slot.RetCInvalidCapacity, "large hash size must be positive: %d", p.LargeHashSize)
	}
	if p.Table != ImplEmbedded && p.Table != ImplOrdered {
		return slot.Errorf(slot.RetCInvalidOperation, "table must be %s or %s, got %q", ImplEmbedded, ImplOrdered, p.Table)
	}
	return nil
}

// Owner holds the current representation. Representations call SetMap from
// inside a mutating operation when they replace themselves.
type Owner interface {
	// SetMap installs m as the current representation
	SetMap(m SlotMap)
	// Policy returns the policy for representations created for this owner
	Policy() Policy
}

// --------------------------------------------------------------------------
// SlotMap Interface
// --------------------------------------------------------------------------

// SlotMap is a table of slots keyed by slot.Key that enumerates in insertion
// order. Implementations are not synchronized; the container adds locking.
type SlotMap interface {

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Size returns the number of slots
	Size() int

	// IsEmpty reports whether the table has no slots
	IsEmpty() bool

	// Query returns the slot stored under key or nil. It never changes the table.
	Query(key slot.Key) *slot.Slot

	// All returns the slots in insertion order. Each call starts a new traversal.
	All() iter.Seq[*slot.Slot]

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Modify returns the slot stored under key, creating and inserting a plain
	// value slot with attrs if there is none.
	Modify(owner Owner, key slot.Key, attrs slot.Attributes) *slot.Slot

	// Compute applies fn to the slot stored under key and performs exactly one of
	// no-op, insert, replace or remove. A replacing slot takes over the
	// insertion position of the slot it replaces. The returned slot is the one
	// stored afterwards (nil if none).
	Compute(owner Owner, key slot.Key, fn ComputeFunc) (*slot.Slot, error)

	// Add inserts a slot whose key is known to be absent, skipping the lookup
	Add(owner Owner, s *slot.Slot)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// Implementation names the representation
	Implementation() Implementation

	// SupportsFeature checks if the representation supports all given features
	SupportsFeature(feature Feature) bool

	// Info returns statistics about the table
	Info() Info
}

// CheckComputed verifies that a ComputeFunc result belongs to key and carries
// a valid attribute mask
func CheckComputed(key slot.Key, s *slot.Slot) error {
	if s == nil {
		return nil
	}
	if s.Key() != key {
		return slot.Errorf(slot.RetCInvalidOperation, "computed slot has key '%s', expected '%s'", s.Key(), key)
	}
	return slot.CheckAttributes(s.Attributes())
}
