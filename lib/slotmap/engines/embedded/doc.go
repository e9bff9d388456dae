// Package embedded implements the default bucket table of the slotmap
// package, tuned for small and medium objects.
//
// Slots are chained into a power-of-two sized bucket array through their own
// Next link, the bucket index is hash & (len-1). A second link
// (OrderedNext) threads all slots into a forward list from first to last
// insertion which All walks.
//
// Growth and promotion:
//
//   - The bucket array is allocated with 4 buckets on the first insert unless a
//     capacity was requested (rounded up to a power of two).
//   - Before an insert that would push the load above 3/4 the array doubles and
//     the existing slot objects are relinked into the new chains.
//   - If the table already holds more than Policy.LargeHashSize slots at that
//     point it does not grow again. It copies its slots in order into a hashed
//     table, adds the triggering slot and installs the result via Owner.SetMap.
//
// Removal relinks the bucket chain in O(chain length) and the order list with a
// scan from the first slot, removals are rare compared to lookups.
//
// Thread-safety: A table is not synchronized. Query, Size and IsEmpty only read
// atomics and may run concurrently with a writer inside an optimistic read;
// everything else needs exclusive access or a read guard.
package embedded
