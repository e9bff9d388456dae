// Package engines creates the bucket table representations selected by a
// slotmap.Policy. The representations themselves live in the sub packages.
package engines

import (
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/embedded"
	"github.com/ValentinKolb/dSlot/lib/slotmap/engines/ordered"
)

// NewTable creates the bucket table named by p.Table. A capacity of 0 creates
// a table that allocates its buckets on first insert.
func NewTable(p slotmap.Policy, capacity int) (slotmap.SlotMap, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Table == slotmap.ImplOrdered && capacity == 0:
		return ordered.New(), nil
	case p.Table == slotmap.ImplOrdered:
		return ordered.NewWithCapacity(capacity)
	case capacity == 0:
		return embedded.New(), nil
	default:
		return embedded.NewWithCapacity(capacity)
	}
}
