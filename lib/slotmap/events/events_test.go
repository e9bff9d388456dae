package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
)

func TestCounters(t *testing.T) {
	before := Promotions("embedded", "hashed")
	Promoted("embedded", "hashed", 2001)
	if Promotions("embedded", "hashed") != before+1 {
		t.Errorf("Expected promotion counter to increase by one")
	}

	g := Growths("ordered")
	Grew("ordered", 16)
	if Growths("ordered") != g+1 {
		t.Errorf("Expected growth counter to increase by one")
	}

	c := Compactions()
	Compacted("ordered", "hashed", 11)
	if Compactions() != c+1 {
		t.Errorf("Expected compaction counter to increase by one")
	}

	f := OptimisticFallbacks()
	OptimisticFallback()
	if OptimisticFallbacks() != f+1 {
		t.Errorf("Expected fallback counter to increase by one")
	}
}

func TestLazyInitHook(t *testing.T) {
	before := LazyInits()
	s := slot.NewLazy(slot.StringKey("x"), slot.Empty, func() (interface{}, error) { return 1, nil })
	if _, err := s.GetValue(nil); err != nil {
		t.Fatal(err)
	}
	if LazyInits() != before+1 {
		t.Errorf("Expected lazy init counter to increase by one")
	}
}

func TestWritePrometheus(t *testing.T) {
	Promoted("single", "embedded", 2)
	var buf bytes.Buffer
	WritePrometheus(&buf)
	if !strings.Contains(buf.String(), `dslot_promotions_total{from="single",to="embedded"}`) {
		t.Errorf("Expected promotion counter in output, got:\n%s", buf.String())
	}
}

func TestEventString(t *testing.T) {
	e := Event{Type: TPromote, From: "embedded", To: "hashed", Size: 3}
	if e.String() != "promoted embedded table to hashed (3 slots)" {
		t.Errorf("Unexpected event string %q", e.String())
	}
}
