// Package snapshot saves the contents of a slot table and restores it.
//
// A Snapshot is the list of slots in insertion order. Each Entry keeps the
// key (string name, symbol description or index), the attributes and a
// primitive Value. Snapshots are written by one of three codecs:
//
//   - binary: a compact little endian format with a magic number and version
//   - json: indented json, useful for inspection
//   - gob: Go's gob encoding
//
// Only plain value slots and initialized lazy slots holding nil, bool, int,
// int64, float64 or string can be saved. Accessor, lambda and built-in slots
// carry behavior and are rejected with a NotSerializable error. Restored slots
// are plain value slots; symbol keys come back as new symbols.
package snapshot
