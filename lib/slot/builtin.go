package slot

// BuiltInFuncs are the functions a built-in slot delegates to. Each one is
// bound to the native object (the target) the slot was created for.
// Get is required, the other functions are optional.
type BuiltInFuncs[T any] struct {
	// Get returns the property value for receiver start
	Get func(target T, start interface{}) (interface{}, error)
	// Set assigns the property, with the same result contract as Slot.SetValue
	Set func(target T, value, owner, start interface{}, strict bool) (bool, error)
	// SetAttributes validates (and may reject) an attribute change
	SetAttributes func(target T, attrs Attributes) error
	// Descriptor builds a custom property descriptor
	Descriptor func(target T, attrs Attributes) (Descriptor, error)
}

// builtInDelegate hides the target type from the slot dispatch
type builtInDelegate interface {
	get(start interface{}) (interface{}, error)
	set(value, owner, start interface{}, strict bool) (bool, error)
	setAttributes(attrs Attributes) error
	descriptor(s *Slot) (Descriptor, error)
}

type builtIn[T any] struct {
	slot   *Slot
	target T
	fns    BuiltInFuncs[T]
}

// NewBuiltIn creates a slot whose value is the native object target itself
// and whose reads, writes and attribute changes go through fns. It is used for
// properties with irregular semantics such as an array's length.
func NewBuiltIn[T any](key Key, attrs Attributes, target T, fns BuiltInFuncs[T]) *Slot {
	b := &builtIn[T]{target: target, fns: fns}
	s := newSlot(key, attrs, KindBuiltIn, b)
	s.setRaw(target)
	b.slot = s
	return s
}

func (b *builtIn[T]) get(start interface{}) (interface{}, error) {
	return b.fns.Get(b.target, start)
}

func (b *builtIn[T]) set(value, owner, start interface{}, strict bool) (bool, error) {
	if b.fns.Set == nil {
		return b.slot.noSetter(value, strict)
	}
	return b.fns.Set(b.target, value, owner, start, strict)
}

func (b *builtIn[T]) setAttributes(attrs Attributes) error {
	if b.fns.SetAttributes == nil {
		return nil
	}
	return b.fns.SetAttributes(b.target, attrs)
}

func (b *builtIn[T]) descriptor(s *Slot) (Descriptor, error) {
	if b.fns.Descriptor != nil {
		return b.fns.Descriptor(b.target, s.Attributes())
	}
	v, err := b.get(b.target)
	if err != nil {
		return Descriptor{}, err
	}
	return dataDescriptor(v, s.Attributes()), nil
}
