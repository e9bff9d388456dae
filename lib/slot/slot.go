package slot

import (
	"reflect"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Variants
// --------------------------------------------------------------------------

// Kind is the value-resolution strategy of a slot
type Kind uint8

const (
	KindValue      Kind = iota // value stored inline
	KindAccessor               // optional getter and setter functions
	KindLambda                 // native closures
	KindOwnerAware             // native closures receiving the owning object
	KindBuiltIn                // delegates to functions bound to a native object
	KindLazy                   // value computed once on first read
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindAccessor:
		return "Accessor"
	case KindLambda:
		return "Lambda"
	case KindOwnerAware:
		return "OwnerAware"
	case KindBuiltIn:
		return "BuiltIn"
	case KindLazy:
		return "Lazy"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Slot
// --------------------------------------------------------------------------

type valueCell struct {
	v interface{}
}

// Slot is one property record. The key never changes after construction.
// Attributes and the inline value may change at any time and are stored
// atomically; the bucket link is atomic as well so that optimistic readers of a
// shared table can walk chains while a writer relinks them. The insertion-order
// links are only touched under the table's exclusive lock.
type Slot struct {
	key        Key
	kind       Kind
	attributes atomic.Uint32
	value      atomic.Pointer[valueCell]

	// variant payload, set once by the constructor
	ext interface{}

	// links owned by the table representation
	next        atomic.Pointer[Slot]
	orderedNext *Slot
	orderedPos  int
}

func newSlot(key Key, attrs Attributes, kind Kind, ext interface{}) *Slot {
	s := &Slot{key: key, kind: kind, ext: ext}
	s.attributes.Store(uint32(attrs))
	return s
}

// New creates a plain value slot
func New(key Key, attrs Attributes) *Slot {
	return newSlot(key, attrs, KindValue, nil)
}

// NewWithValue creates a plain value slot holding value
func NewWithValue(key Key, attrs Attributes, value interface{}) *Slot {
	s := New(key, attrs)
	s.setRaw(value)
	return s
}

// Key returns the identity of the slot
func (s *Slot) Key() Key { return s.key }

// Hash returns the index-or-hash value used for bucket selection
func (s *Slot) Hash() int32 { return s.key.hash }

// Kind returns the variant of the slot
func (s *Slot) Kind() Kind { return s.kind }

// Attributes returns the current attribute bitmask
func (s *Slot) Attributes() Attributes {
	return Attributes(s.attributes.Load())
}

// SetAttributes validates and stores a new attribute bitmask. Built-in slots
// may reject the change through their attribute hook.
func (s *Slot) SetAttributes(attrs Attributes) error {
	if err := CheckAttributes(attrs); err != nil {
		return err
	}
	if b, ok := s.ext.(builtInDelegate); ok {
		if err := b.setAttributes(attrs); err != nil {
			return err
		}
	}
	s.attributes.Store(uint32(attrs))
	return nil
}

// Value returns the inline value without running getters or initializers
func (s *Slot) Value() interface{} {
	if s.kind == KindLazy {
		return s.ext.(*lazy).raw()
	}
	if c := s.value.Load(); c != nil {
		return c.v
	}
	return nil
}

// SetRawValue stores value inline, bypassing attributes and setters
func (s *Slot) SetRawValue(value interface{}) {
	if s.kind == KindLazy {
		s.ext.(*lazy).override(value)
		return
	}
	s.setRaw(value)
}

func (s *Slot) setRaw(v interface{}) {
	s.value.Store(&valueCell{v: v})
}

// GetValue resolves the value of the slot for a read with receiver start.
//
// Thread-safety: getters run on the caller's goroutine without any table lock held.
func (s *Slot) GetValue(start interface{}) (interface{}, error) {
	switch s.kind {
	case KindValue:
		return s.Value(), nil
	case KindAccessor:
		return s.ext.(*accessor).get(s, start)
	case KindLambda:
		return s.ext.(*lambda).get(s, start)
	case KindOwnerAware:
		return s.ext.(*ownerAware).get(s, start)
	case KindBuiltIn:
		return s.ext.(builtInDelegate).get(start)
	case KindLazy:
		return s.ext.(*lazy).get()
	default:
		return nil, Errorf(RetCInternalError, "unknown slot kind %d", s.kind)
	}
}

// SetValue assigns value through the slot. owner is the object holding the
// slot and start the receiver of the assignment. The boolean reports whether
// the assignment was handled; false means the slot belongs to a different
// object (a prototype) and the caller should define the property on start.
// In strict mode read-only and getter-only slots report an error, otherwise
// the write is silently ignored.
func (s *Slot) SetValue(value, owner, start interface{}, strict bool) (bool, error) {
	switch s.kind {
	case KindValue:
		return s.setPlain(value, owner, start, strict)
	case KindAccessor:
		return s.ext.(*accessor).set(s, value, owner, start, strict)
	case KindLambda:
		return s.ext.(*lambda).set(s, value, owner, start, strict)
	case KindOwnerAware:
		return s.ext.(*ownerAware).set(s, value, owner, start, strict)
	case KindBuiltIn:
		return s.ext.(builtInDelegate).set(value, owner, start, strict)
	case KindLazy:
		return s.setPlain(value, owner, start, strict)
	default:
		return false, Errorf(RetCInternalError, "unknown slot kind %d", s.kind)
	}
}

// setPlain implements the default assignment with read-only enforcement
func (s *Slot) setPlain(value, owner, start interface{}, strict bool) (bool, error) {
	if s.Attributes().Has(ReadOnly) {
		if strict {
			return true, Errorf(RetCReadOnly, "property '%s' is read-only", s.key)
		}
		return true, nil
	}
	if !sameObject(owner, start) {
		return false, nil
	}
	s.SetRawValue(value)
	return true, nil
}

// noSetter signals an assignment to a getter-only property
func (s *Slot) noSetter(value interface{}, strict bool) (bool, error) {
	if strict {
		return true, &NoSetterError{Key: s.key, Value: value}
	}
	return true, nil
}

// Copy returns a shallow copy with all table links cleared. Variant payloads
// are shared, so a copied lazy slot initializes at most once together with
// its original.
func (s *Slot) Copy() *Slot {
	c := newSlot(s.key, s.Attributes(), s.kind, s.ext)
	c.value.Store(s.value.Load())
	return c
}

// --------------------------------------------------------------------------
// Table links
// --------------------------------------------------------------------------

// Next returns the next slot in the same bucket chain
func (s *Slot) Next() *Slot { return s.next.Load() }

// SetNext links the next slot of the bucket chain
func (s *Slot) SetNext(n *Slot) { s.next.Store(n) }

// OrderedNext returns the slot inserted after this one
func (s *Slot) OrderedNext() *Slot { return s.orderedNext }

// SetOrderedNext links the slot inserted after this one
func (s *Slot) SetOrderedNext(n *Slot) { s.orderedNext = n }

// OrderedPos returns the position of the slot in a positional table
func (s *Slot) OrderedPos() int { return s.orderedPos }

// SetOrderedPos records the position of the slot in a positional table
func (s *Slot) SetOrderedPos(pos int) { s.orderedPos = pos }

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// sameObject compares two object handles without panicking on uncomparable dynamic types
func sameObject(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
