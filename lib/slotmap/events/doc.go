// Package events reports structural changes of slot tables: promotions between
// representations, bucket array growth, compaction of ordered tables, optimistic
// read fallbacks and lazy slot initializations.
//
// Every event increments a VictoriaMetrics counter synchronously. Promotion,
// growth and compaction events are additionally logged at debug level by a
// background goroutine fed through a lock-free queue, because they happen while
// a table holds its exclusive lock.
package events
