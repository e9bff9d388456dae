package slot

import (
	"sync"
	"sync/atomic"
)

// Initializer computes the value of a lazily initialized slot
type Initializer func() (interface{}, error)

// lazy is shared by a lazy slot and all of its copies
type lazy struct {
	mu   sync.Mutex
	cell atomic.Pointer[valueCell] // nil until initialized
	init Initializer
}

// NewLazy creates a slot whose value is computed by init on the first read.
// Concurrent first reads wait for a single initialization. If init fails the
// error is returned and the next read tries again.
//
// As with sync.Once, an initializer that reads its own slot deadlocks.
func NewLazy(key Key, attrs Attributes, init Initializer) *Slot {
	return newSlot(key, attrs, KindLazy, &lazy{init: init})
}

// lazyInitHook is loaded when an initialization completes, nil means no hook
var lazyInitHook atomic.Pointer[func()]

// SetLazyInitHook installs a function called after every successful lazy
// initialization, including those of slots created before the call. A nil fn
// removes the hook.
//
// Thread-safety: may be called concurrently with initializations.
func SetLazyInitHook(fn func()) {
	if fn == nil {
		lazyInitHook.Store(nil)
		return
	}
	lazyInitHook.Store(&fn)
}

// IsInitialized reports whether a lazy slot has its value. Other kinds always report true.
func (s *Slot) IsInitialized() bool {
	if l, ok := s.ext.(*lazy); ok {
		return l.cell.Load() != nil
	}
	return true
}

func (l *lazy) get() (interface{}, error) {
	if c := l.cell.Load(); c != nil {
		return c.v, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c := l.cell.Load(); c != nil {
		return c.v, nil
	}

	v, err := l.init()
	if err != nil {
		return nil, err
	}
	l.cell.Store(&valueCell{v: v})
	l.init = nil
	if hook := lazyInitHook.Load(); hook != nil {
		(*hook)()
	}
	return v, nil
}

// raw returns the value if initialized and nil otherwise
func (l *lazy) raw() interface{} {
	if c := l.cell.Load(); c != nil {
		return c.v
	}
	return nil
}

// override replaces the value (and the pending initializer) with v
func (l *lazy) override(v interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cell.Store(&valueCell{v: v})
	l.init = nil
}
