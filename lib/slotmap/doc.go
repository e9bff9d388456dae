// Package slotmap defines the table abstraction behind every object's
// property storage.
//
// A SlotMap maps a slot.Key (string name, symbol or integer index) to a
// *slot.Slot and enumerates slots in insertion order: the order in which a key
// was first inserted, kept when its slot is replaced and reset when it is
// removed and inserted again.
//
// Key Components:
//
//   - SlotMap: the interface every representation implements. Query never
//     changes the table, Modify creates a plain slot on a miss, Compute is the
//     single atomic insert/replace/remove primitive and Add inserts slots known
//     to be absent (promotion and snapshot loading).
//
//   - Owner and Policy: representations don't replace themselves in place.
//     When one outgrows its layout it builds its successor and installs it
//     through Owner.SetMap, using the Owner's Policy for sizing and thresholds.
//
//   - Representations (see the engines packages):
//     single (shared empty singleton and single-entry map),
//     embedded (power-of-two open-chained buckets with an intrusive order list),
//     ordered (buckets for identity plus a positional array with tombstones) and
//     hashed (xsync.MapOf keyed by slot.Key, tolerant to collisions and size).
//
//   - Features and Info: capability flags, used by the conformance suite to skip
//     what a representation does not promise, and statistics about bucket chains.
//
// The typical lifecycle of a table is empty -> single -> embedded (or ordered)
// -> hashed. The container package wraps the current representation and adds
// the locking of the shared regime.
package slotmap
