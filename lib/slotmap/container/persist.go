package container

import (
	"io"

	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/snapshot"
)

// Save writes the slots in insertion order using codec. The slot list is
// taken under the iteration guard, encoding runs without any lock.
func (c *Container) Save(w io.Writer, codec snapshot.Codec) error {
	snap, err := snapshot.FromSlots(c.Slots())
	if err != nil {
		return err
	}
	if err := codec.Encode(w, snap); err != nil {
		return err
	}
	common.GetLogger("container").Debugf("saved %d slots (%s)", len(snap.Entries), codec.Name())
	return nil
}

// Load reads a snapshot written by Save and adds its slots in saved order.
// The container must be empty.
func (c *Container) Load(r io.Reader, codec snapshot.Codec) error {
	snap, err := codec.Decode(r)
	if err != nil {
		return err
	}
	// validate everything first, a failed load leaves the container unchanged
	slots := snap.Slots()
	seen := make(map[slot.Key]struct{}, len(slots))
	for _, s := range slots {
		if err := slot.CheckAttributes(s.Attributes()); err != nil {
			return err
		}
		if _, dup := seen[s.Key()]; dup {
			return slot.Errorf(slot.RetCInvalidOperation, "snapshot contains key '%s' twice", s.Key())
		}
		seen[s.Key()] = struct{}{}
	}

	err = c.WithBatch(func(b *Batch) error {
		if n, _ := b.Size(); n != 0 {
			return slot.Errorf(slot.RetCInvalidOperation, "cannot load into a container holding %d slots", n)
		}
		for _, s := range slots {
			if err := b.Add(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	common.GetLogger("container").Debugf("loaded %d slots (%s)", len(slots), codec.Name())
	return nil
}
