// Package single implements the two smallest representations.
//
// Empty is a stateless singleton shared by all owners that never stored a
// slot, so a never-populated object allocates no table. The first insert
// installs a single entry map, or a bucket table of Policy.InitialCapacity
// when that is above one.
//
// The single entry map holds one immutable slot reference. Replacing the slot
// installs a new single entry map, removing it reinstalls Empty and a second
// key promotes to the bucket table of the owner's policy.
package single
