package slot

// Descriptor is the property descriptor of a slot. Data descriptors carry
// Value and Writable, accessor descriptors carry Getter and Setter.
type Descriptor struct {
	Accessor     bool
	Value        interface{}
	Writable     bool
	Getter       Callable
	Setter       Callable
	Enumerable   bool
	Configurable bool
}

func dataDescriptor(v interface{}, attrs Attributes) Descriptor {
	return Descriptor{
		Value:        v,
		Writable:     !attrs.Has(ReadOnly),
		Enumerable:   !attrs.Has(DontEnum),
		Configurable: !attrs.Has(Permanent),
	}
}

func accessorDescriptor(getter, setter Callable, attrs Attributes) Descriptor {
	return Descriptor{
		Accessor:     true,
		Getter:       getter,
		Setter:       setter,
		Enumerable:   !attrs.Has(DontEnum),
		Configurable: !attrs.Has(Permanent),
	}
}

// Descriptor builds the property descriptor of the slot. Lazy slots are
// initialized and built-in slots are read to fill in the value. Lambda slots
// expose their closures as callables.
func (s *Slot) Descriptor() (Descriptor, error) {
	attrs := s.Attributes()
	switch s.kind {
	case KindAccessor:
		g, st := s.Getter(), s.Setter()
		if g == nil && st == nil {
			return dataDescriptor(s.Value(), attrs), nil
		}
		var gf, sf Callable
		if g != nil {
			gf = g.Function()
		}
		if st != nil {
			sf = st.Function()
		}
		return accessorDescriptor(gf, sf, attrs), nil
	case KindLambda:
		gf, sf := s.ext.(*lambda).functions()
		return accessorDescriptor(gf, sf, attrs), nil
	case KindOwnerAware:
		gf, sf := s.ext.(*ownerAware).functions()
		return accessorDescriptor(gf, sf, attrs), nil
	case KindBuiltIn:
		return s.ext.(builtInDelegate).descriptor(s)
	case KindLazy:
		v, err := s.GetValue(nil)
		if err != nil {
			return Descriptor{}, err
		}
		return dataDescriptor(v, attrs), nil
	default:
		return dataDescriptor(s.Value(), attrs), nil
	}
}
