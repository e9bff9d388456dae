package slot

import "sync"

// --------------------------------------------------------------------------
// Native lambda slot
// --------------------------------------------------------------------------

// LambdaGetter and LambdaSetter are the native closures of a lambda slot
type (
	LambdaGetter func(start interface{}) (interface{}, error)
	LambdaSetter func(start, value interface{}) error
)

type lambda struct {
	getter LambdaGetter
	setter LambdaSetter

	// script-visible functions, only built when a descriptor asks for them
	materialize sync.Once
	getterFn    Callable
	setterFn    Callable
}

// NewLambda creates a slot whose reads and writes call native closures.
// One of the closures may be nil, but not both.
func NewLambda(key Key, attrs Attributes, getter LambdaGetter, setter LambdaSetter) (*Slot, error) {
	if getter == nil && setter == nil {
		return nil, errNoClosures(key)
	}
	return newSlot(key, attrs, KindLambda, &lambda{getter: getter, setter: setter}), nil
}

func errNoClosures(key Key) error {
	return Errorf(RetCInvalidOperation, "property '%s': at least one of {getter, setter} is required", key)
}

func (l *lambda) get(s *Slot, start interface{}) (interface{}, error) {
	if l.getter == nil {
		return s.Value(), nil
	}
	return l.getter(start)
}

func (l *lambda) set(s *Slot, value, owner, start interface{}, strict bool) (bool, error) {
	if l.setter != nil {
		return true, l.setter(start, value)
	}
	return s.noSetter(value, strict)
}

// functions returns the getter and setter wrapped as callables
func (l *lambda) functions() (Callable, Callable) {
	l.materialize.Do(func() {
		if l.getter != nil {
			l.getterFn = NativeGetter(l.getter).Function()
		}
		if l.setter != nil {
			l.setterFn = NativeSetter(l.setter).Function()
		}
	})
	return l.getterFn, l.setterFn
}

// --------------------------------------------------------------------------
// Owner-aware lambda slot
// --------------------------------------------------------------------------

// OwnerGetter and OwnerSetter receive the object that owns the slot
type (
	OwnerGetter func(owner, start interface{}) (interface{}, error)
	OwnerSetter func(owner, start, value interface{}) error
)

type ownerAware struct {
	owner  interface{}
	getter OwnerGetter
	setter OwnerSetter

	materialize sync.Once
	getterFn    Callable
	setterFn    Callable
}

// NewOwnerAware creates a lambda slot whose closures are called with the
// owning object, so they can read and write its instance state. One of the
// closures may be nil, but not both.
//
// owner is the object the slot is defined on. Writes pass the owner given to
// SetValue instead when it is not nil; reads have no call-time owner and always
// see the bound one. Closures of a slot defined on a prototype should use
// start, the receiver of the access, to reach instance state.
func NewOwnerAware(key Key, attrs Attributes, owner interface{}, getter OwnerGetter, setter OwnerSetter) (*Slot, error) {
	if getter == nil && setter == nil {
		return nil, errNoClosures(key)
	}
	return newSlot(key, attrs, KindOwnerAware, &ownerAware{owner: owner, getter: getter, setter: setter}), nil
}

func (o *ownerAware) get(s *Slot, start interface{}) (interface{}, error) {
	if o.getter == nil {
		return s.Value(), nil
	}
	return o.getter(o.owner, start)
}

func (o *ownerAware) set(s *Slot, value, owner, start interface{}, strict bool) (bool, error) {
	if o.setter == nil {
		return s.noSetter(value, strict)
	}
	if owner == nil {
		owner = o.owner
	}
	return true, o.setter(owner, start, value)
}

// functions returns the closures as callables. The receiver of a call is
// passed as start, the bound owner as owner.
func (o *ownerAware) functions() (Callable, Callable) {
	o.materialize.Do(func() {
		if o.getter != nil {
			o.getterFn = CallableFunc(func(this interface{}, _ ...interface{}) (interface{}, error) {
				return o.getter(o.owner, this)
			})
		}
		if o.setter != nil {
			o.setterFn = CallableFunc(func(this interface{}, args ...interface{}) (interface{}, error) {
				var v interface{}
				if len(args) > 0 {
					v = args[0]
				}
				return nil, o.setter(o.owner, this, v)
			})
		}
	})
	return o.getterFn, o.setterFn
}
