// Package util contains the small building blocks shared by the slot map
// representations and their tooling.
//
//   - Hashing: FNV-1a string hashing folded into the 32 bit hash space used by
//     the bucket tables, power-of-two helpers and random seeds for symbol identity.
//   - Statistics: Stats and DistributionStats describe how evenly slots are spread
//     over buckets, Histogram records chain lengths for percentile estimates.
//   - Queue: a lock-free multi-producer single-consumer queue. Table code uses it to
//     hand structural events to a background goroutine without doing I/O while a
//     table lock is held.
package util
