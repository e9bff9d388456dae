package slotmap

import "github.com/ValentinKolb/dSlot/lib/slot"

// The functions below build ComputeFuncs for the conversions the object model
// performs most often. Converted slots replace the existing slot in place, so
// the property keeps its enumeration position.

// EnsureAccessor makes sure an accessor slot is stored under the key. A plain
// slot is converted keeping its value and attributes, a missing slot is
// created with attrs.
func EnsureAccessor(attrs slot.Attributes) ComputeFunc {
	return func(key slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		if existing == nil {
			return slot.NewAccessor(key, attrs, nil, nil), nil
		}
		return slot.ToAccessor(existing), nil
	}
}

// EnsureLambda makes sure a native lambda slot is stored under the key.
// An existing lambda slot is kept, any other slot is replaced keeping its
// attributes. Without getter and setter the computation fails and the table
// is left unchanged.
func EnsureLambda(attrs slot.Attributes, getter slot.LambdaGetter, setter slot.LambdaSetter) ComputeFunc {
	return func(key slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		switch {
		case existing == nil:
			return slot.NewLambda(key, attrs, getter, setter)
		case existing.Kind() == slot.KindLambda:
			return existing, nil
		default:
			return slot.NewLambda(key, existing.Attributes(), getter, setter)
		}
	}
}

// EnsureLazy makes sure a lazily initialized slot is stored under the key.
// An existing lazy slot is kept, any other slot is replaced keeping its attributes.
func EnsureLazy(attrs slot.Attributes, init slot.Initializer) ComputeFunc {
	return func(key slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		switch {
		case existing == nil:
			return slot.NewLazy(key, attrs, init), nil
		case existing.Kind() == slot.KindLazy:
			return existing, nil
		default:
			return slot.NewLazy(key, existing.Attributes(), init), nil
		}
	}
}

// Replace stores s under its key, inserting or replacing
func Replace(s *slot.Slot) ComputeFunc {
	return func(_ slot.Key, _ *slot.Slot) (*slot.Slot, error) {
		return s, nil
	}
}

// Remove deletes the slot stored under the key (no-op if absent)
func Remove() ComputeFunc {
	return func(_ slot.Key, _ *slot.Slot) (*slot.Slot, error) {
		return nil, nil
	}
}

// WithAttributes changes the attributes of an existing slot and leaves
// missing keys absent
func WithAttributes(attrs slot.Attributes) ComputeFunc {
	return func(_ slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		if existing == nil {
			return nil, nil
		}
		if err := existing.SetAttributes(attrs); err != nil {
			return nil, err
		}
		return existing, nil
	}
}
