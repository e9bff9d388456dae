// Package stamped provides a lock with three modes: exclusive writes,
// pessimistic shared reads and optimistic reads that take no lock at all and
// are validated against a version stamp afterwards.
//
// The stamp is a sequence counter that a writer makes odd when it acquires the
// lock and even again when it releases it. An optimistic reader records an
// even stamp, reads, and accepts the result only if the counter did not move.
// Data read optimistically must be stored in atomics, the reader may run
// concurrently with a writer.
//
// Usage:
//
//	if stamp, ok := lock.TryOptimisticRead(); ok {
//		v := readAtomics()
//		if lock.Validate(stamp) {
//			return v
//		}
//	}
//	lock.RLock()
//	defer lock.RUnlock()
//	return readAtomics()
package stamped

import (
	"sync"
	"sync/atomic"
)

// Stamp identifies the version observed by a reader
type Stamp uint64

// Lock is a sequence lock combined with a sync.RWMutex. The zero value is an
// unlocked lock. A Lock must not be copied after first use.
type Lock struct {
	seq atomic.Uint64
	mu  sync.RWMutex
}

// TryOptimisticRead returns the current stamp. ok is false while a writer
// holds the lock, the caller should then take the read lock.
//
// Thread-safety: This method never blocks.
func (l *Lock) TryOptimisticRead() (Stamp, bool) {
	seq := l.seq.Load()
	return Stamp(seq), seq&1 == 0
}

// Validate reports whether no writer acquired the lock since stamp was taken
func (l *Lock) Validate(stamp Stamp) bool {
	return l.seq.Load() == uint64(stamp)
}

// Lock acquires the exclusive lock and invalidates all optimistic reads
func (l *Lock) Lock() {
	l.mu.Lock()
	l.seq.Add(1)
}

// Unlock releases the exclusive lock
func (l *Lock) Unlock() {
	l.seq.Add(1)
	l.mu.Unlock()
}

// RLock acquires the lock for pessimistic reading. Pessimistic readers do not
// invalidate optimistic reads.
func (l *Lock) RLock() {
	l.mu.RLock()
}

// RUnlock releases a pessimistic read lock
func (l *Lock) RUnlock() {
	l.mu.RUnlock()
}

// ReadLock acquires the read lock and returns the stamp it holds
func (l *Lock) ReadLock() Stamp {
	l.mu.RLock()
	return Stamp(l.seq.Load())
}

// UnlockRead releases a read lock taken with ReadLock
func (l *Lock) UnlockRead(Stamp) {
	l.mu.RUnlock()
}

// IsWriteLocked reports whether a writer currently holds the lock
func (l *Lock) IsWriteLocked() bool {
	return l.seq.Load()&1 == 1
}
