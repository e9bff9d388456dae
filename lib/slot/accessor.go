package slot

import "sync/atomic"

// --------------------------------------------------------------------------
// Callables
// --------------------------------------------------------------------------

// Callable is a function handle supplied by the runtime (a script function or
// a wrapped native function). The slot package never inspects it, it only
// invokes it with a receiver and arguments.
type Callable interface {
	Call(this interface{}, args ...interface{}) (interface{}, error)
}

// CallableFunc adapts a Go function to Callable
type CallableFunc func(this interface{}, args ...interface{}) (interface{}, error)

// Call invokes the function
func (f CallableFunc) Call(this interface{}, args ...interface{}) (interface{}, error) {
	return f(this, args...)
}

// Getter reads the value of an accessor for a receiver. Function returns the
// getter as a Callable, as needed for property descriptors.
type Getter interface {
	Get(start interface{}) (interface{}, error)
	Function() Callable
}

// Setter writes the value of an accessor for a receiver
type Setter interface {
	Set(start, value interface{}) error
	Function() Callable
}

// FunctionGetter is a getter backed by a script function
type FunctionGetter struct {
	Fn Callable
}

func (g FunctionGetter) Get(start interface{}) (interface{}, error) {
	return g.Fn.Call(start)
}

func (g FunctionGetter) Function() Callable { return g.Fn }

// FunctionSetter is a setter backed by a script function
type FunctionSetter struct {
	Fn Callable
}

func (s FunctionSetter) Set(start, value interface{}) error {
	_, err := s.Fn.Call(start, value)
	return err
}

func (s FunctionSetter) Function() Callable { return s.Fn }

// NativeGetter is a getter backed by a Go delegate
type NativeGetter func(start interface{}) (interface{}, error)

func (g NativeGetter) Get(start interface{}) (interface{}, error) {
	return g(start)
}

func (g NativeGetter) Function() Callable {
	return CallableFunc(func(this interface{}, _ ...interface{}) (interface{}, error) {
		return g(this)
	})
}

// NativeSetter is a setter backed by a Go delegate
type NativeSetter func(start, value interface{}) error

func (s NativeSetter) Set(start, value interface{}) error {
	return s(start, value)
}

func (s NativeSetter) Function() Callable {
	return CallableFunc(func(this interface{}, args ...interface{}) (interface{}, error) {
		var v interface{}
		if len(args) > 0 {
			v = args[0]
		}
		return nil, s(this, v)
	})
}

// --------------------------------------------------------------------------
// Accessor slot
// --------------------------------------------------------------------------

type getterRef struct{ g Getter }
type setterRef struct{ s Setter }

// accessor holds the replaceable getter and setter of an accessor slot
type accessor struct {
	getter atomic.Pointer[getterRef]
	setter atomic.Pointer[setterRef]
}

// NewAccessor creates an accessor slot. getter and setter may be nil.
func NewAccessor(key Key, attrs Attributes, getter Getter, setter Setter) *Slot {
	a := &accessor{}
	s := newSlot(key, attrs, KindAccessor, a)
	s.SetGetter(getter)
	s.SetSetter(setter)
	return s
}

// ToAccessor converts a slot into an accessor slot with the same key,
// attributes and inline value. Accessor slots are returned unchanged.
func ToAccessor(existing *Slot) *Slot {
	if existing.kind == KindAccessor {
		return existing
	}
	s := NewAccessor(existing.key, existing.Attributes(), nil, nil)
	s.setRaw(existing.Value())
	return s
}

// Getter returns the getter of an accessor slot (nil if none or not an accessor)
func (s *Slot) Getter() Getter {
	if a, ok := s.ext.(*accessor); ok {
		if r := a.getter.Load(); r != nil {
			return r.g
		}
	}
	return nil
}

// Setter returns the setter of an accessor slot (nil if none or not an accessor)
func (s *Slot) Setter() Setter {
	if a, ok := s.ext.(*accessor); ok {
		if r := a.setter.Load(); r != nil {
			return r.s
		}
	}
	return nil
}

// SetGetter replaces the getter of an accessor slot. It is a no-op for other kinds.
func (s *Slot) SetGetter(g Getter) {
	if a, ok := s.ext.(*accessor); ok {
		if g == nil {
			a.getter.Store(nil)
			return
		}
		a.getter.Store(&getterRef{g: g})
	}
}

// SetSetter replaces the setter of an accessor slot. It is a no-op for other kinds.
func (s *Slot) SetSetter(st Setter) {
	if a, ok := s.ext.(*accessor); ok {
		if st == nil {
			a.setter.Store(nil)
			return
		}
		a.setter.Store(&setterRef{s: st})
	}
}

func (a *accessor) get(s *Slot, start interface{}) (interface{}, error) {
	if r := a.getter.Load(); r != nil {
		return r.g.Get(start)
	}
	return s.Value(), nil
}

func (a *accessor) set(s *Slot, value, owner, start interface{}, strict bool) (bool, error) {
	if r := a.setter.Load(); r != nil {
		return true, r.s.Set(start, value)
	}
	if a.getter.Load() != nil {
		return s.noSetter(value, strict)
	}
	// neither getter nor setter: behaves like a plain value slot
	return s.setPlain(value, owner, start, strict)
}
