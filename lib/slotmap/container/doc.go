// Package container provides the owner of an object's slot table.
//
// A Container starts with the shared empty representation and lets the
// representations replace themselves as the object grows:
//
//	empty -> single entry -> embedded (or ordered) -> hashed
//
// Every operation is forwarded to the representation the container currently
// references. Promotions happen inside the write path of a representation,
// which installs its successor through Container.SetMap.
//
// Concurrency regimes:
//
//   - Uncontended (Options.ThreadSafe false): nothing is synchronized, the
//     container must be confined to one goroutine at a time.
//   - Shared (Options.ThreadSafe true): Size, IsEmpty and Query read
//     optimistically and validate against a stamped lock, falling back to the
//     read lock when a writer interfered. Mutations hold the write lock.
//     Iteration requires the guard ReadLock/UnlockRead; Slots returns a copy
//     taken under the guard.
//
// Batches bracket several operations in one lock acquisition. They re-resolve
// the current representation after every structural operation, so later
// steps see a promotion caused by earlier ones. WithBatch releases the lock
// on every exit path including panics.
//
// Save and Load write and restore the table through a snapshot.Codec.
//
// Usage:
//
//	c, _ := container.New(&container.Options{ThreadSafe: true})
//	s, _ := c.Modify(slot.StringKey("x"), slot.Empty)
//	s.SetRawValue(1)
//
//	_ = c.WithBatch(func(b *container.Batch) error {
//		if s, _ := b.Query(slot.StringKey("x")); s != nil {
//			_, err := b.Compute(slot.StringKey("y"), slotmap.Replace(slot.NewWithValue(slot.StringKey("y"), slot.Empty, 2)))
//			return err
//		}
//		return nil
//	})
package container
