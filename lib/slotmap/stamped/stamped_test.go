package stamped

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestOptimisticRead(t *testing.T) {
	t.Run("ValidWithoutWriter", func(t *testing.T) {
		var l Lock
		stamp, ok := l.TryOptimisticRead()
		if !ok {
			t.Fatalf("Expected optimistic read to be possible on an unlocked lock")
		}
		l.RLock()
		l.RUnlock()
		if !l.Validate(stamp) {
			t.Errorf("Expected stamp to stay valid across a pessimistic read")
		}
	})

	t.Run("InvalidAfterWrite", func(t *testing.T) {
		var l Lock
		stamp, _ := l.TryOptimisticRead()
		l.Lock()
		l.Unlock()
		if l.Validate(stamp) {
			t.Errorf("Expected stamp to be invalid after a write")
		}
	})

	t.Run("UnavailableWhileWriteLocked", func(t *testing.T) {
		var l Lock
		l.Lock()
		if _, ok := l.TryOptimisticRead(); ok {
			t.Errorf("Expected optimistic read to fail while write locked")
		}
		if !l.IsWriteLocked() {
			t.Errorf("Expected lock to report write locked")
		}
		l.Unlock()
		if l.IsWriteLocked() {
			t.Errorf("Expected lock to be released")
		}
	})

	t.Run("ReadLockStamp", func(t *testing.T) {
		var l Lock
		stamp := l.ReadLock()
		if !l.Validate(stamp) {
			t.Errorf("Expected read lock stamp to be valid")
		}
		l.UnlockRead(stamp)
	})
}

// TestNoTornReads checks that a validated optimistic read never observes a
// half written pair
func TestNoTornReads(t *testing.T) {
	var (
		l    Lock
		a, b atomic.Int64
		stop atomic.Bool
		wg   sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(1); i <= 50000; i++ {
			l.Lock()
			a.Store(i)
			b.Store(-i)
			l.Unlock()
		}
		stop.Store(true)
	}()

	var torn atomic.Int64
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				stamp, ok := l.TryOptimisticRead()
				if !ok {
					continue
				}
				x, y := a.Load(), b.Load()
				if l.Validate(stamp) && x != -y {
					torn.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if torn.Load() != 0 {
		t.Errorf("Expected no torn reads, got %d", torn.Load())
	}
}
