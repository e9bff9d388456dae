package inspect

import (
	"testing"

	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
)

func TestFill(t *testing.T) {
	t.Run("Promotion", func(t *testing.T) {
		c, err := fill(&common.Config{Table: "embedded", LargeHashSize: 20, Keys: 100}, 0)
		if err != nil {
			t.Fatalf("Failed to fill: %v", err)
		}
		if c.Size() != 100 {
			t.Errorf("Expected 100 slots, got %d", c.Size())
		}
		if c.Implementation() != slotmap.ImplHashed {
			t.Errorf("Expected hashed table, got %s", c.Implementation())
		}
	})

	t.Run("Tombstones", func(t *testing.T) {
		c, err := fill(&common.Config{Table: "ordered", LargeHashSize: 2000, Keys: 50}, 10)
		if err != nil {
			t.Fatalf("Failed to fill: %v", err)
		}
		if c.Size() != 45 {
			t.Errorf("Expected 45 slots, got %d", c.Size())
		}
		if c.Implementation() != slotmap.ImplOrdered {
			t.Errorf("Expected ordered table with 5 tombstones, got %s", c.Implementation())
		}
	})

	t.Run("InvalidTable", func(t *testing.T) {
		if _, err := fill(&common.Config{Table: "bogus", LargeHashSize: 10, Keys: 1}, 0); err == nil {
			t.Errorf("Expected error for an unknown table kind")
		}
	})
}
