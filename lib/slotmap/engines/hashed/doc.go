// Package hashed implements the representation used for very large objects and
// for tables that remove a lot.
//
// Identity lookups go through a xsync.MapOf keyed by slot.Key, hashed from the
// key hash with the per-map seed of xsync. Keys with colliding hashes cost an
// equality check instead of a long chain, and the map can be read by
// optimistic readers while a writer stores into it. Insertion order is a
// doubly linked list of entries, so removals are O(1) and iteration tolerates
// removals and insertions while it runs.
//
// The hashed table is the last representation, it never promotes.
package hashed
