package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// --------------------------------------------------------------------------
// Seeds
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed, used for the identity hash of symbols
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails on broken systems, the clock is good enough for a hash seed
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// HashString generates a 64 bit FNV-1a hash value for a string with a seed
func HashString(s string, seed uint64) uint64 {
	hash := uint64(offset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}

// Fold32 folds a 64 bit hash into the 32 bit hash space used by slot tables.
// Both halves are mixed so that the low bits (used for bucket selection) depend on the whole value.
func Fold32(h uint64) int32 {
	return int32(uint32(h) ^ uint32(h>>32))
}

// StringHash returns the unseeded 32 bit hash of a property name.
// The value is stable across processes so that snapshots can be compared.
func StringHash(s string) int32 {
	return Fold32(HashString(s, 0))
}

// BucketIndex maps a hash to a bucket of a power-of-two sized table
func BucketIndex(hash int32, tableSize int) int {
	return int(uint32(hash) & uint32(tableSize-1))
}

// NextPowerOfTwo rounds n up to the next power of two (minimum 1)
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
