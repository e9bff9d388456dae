// Package ordered implements a bucket table that keeps insertion order in a
// dense positional array instead of a linked list.
//
// Lookups use the same bucket chains as the embedded table. Each slot records
// its position in the positional array (slot.OrderedPos), so a replacement
// takes over the position in O(1). Removal writes a tombstone into the
// position, positions are never reused and All skips tombstones.
//
// After more than 10 removals the table compacts by installing a hashed table
// holding the live slots. Growth and large object promotion follow the
// embedded table.
package ordered
