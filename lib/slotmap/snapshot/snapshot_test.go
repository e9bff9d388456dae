package snapshot

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
)

// testSlots returns slots covering every key type and value type
func testSlots() []*slot.Slot {
	lazy := slot.NewLazy(slot.StringKey("lazy"), slot.Empty, func() (interface{}, error) {
		return "computed", nil
	})
	_, _ = lazy.GetValue(nil)

	return []*slot.Slot{
		slot.NewWithValue(slot.StringKey("name"), slot.Empty, "value"),
		slot.NewWithValue(slot.IndexKey(7), slot.ReadOnly, 42),
		slot.NewWithValue(slot.IndexKey(-1), slot.Empty, int64(-5)),
		slot.NewWithValue(slot.SymbolKey(slot.NewSymbol("iterator")), slot.DontEnum, 1.5),
		slot.NewWithValue(slot.StringKey("flag"), slot.Permanent|slot.Const, true),
		slot.NewWithValue(slot.StringKey(""), slot.Empty, nil),
		lazy,
	}
}

func TestFromSlots(t *testing.T) {
	t.Run("CapturesEntries", func(t *testing.T) {
		snap, err := FromSlots(testSlots())
		if err != nil {
			t.Fatalf("Failed to create snapshot: %v", err)
		}
		if len(snap.Entries) != 7 {
			t.Fatalf("Expected 7 entries, got %d", len(snap.Entries))
		}
		if snap.Entries[1].Index != 7 || snap.Entries[1].Attributes != slot.ReadOnly {
			t.Errorf("Expected index entry 7 read-only, got %+v", snap.Entries[1])
		}
		if snap.Entries[3].Name != "iterator" || snap.Entries[3].KeyType != slot.KeyTSymbol {
			t.Errorf("Expected symbol entry 'iterator', got %+v", snap.Entries[3])
		}
		if snap.Entries[6].Value.Interface() != "computed" {
			t.Errorf("Expected lazy value 'computed', got %v", snap.Entries[6].Value.Interface())
		}
	})

	t.Run("RejectsAccessor", func(t *testing.T) {
		s := slot.NewAccessor(slot.StringKey("acc"), slot.Empty, nil, nil)
		if _, err := FromSlots([]*slot.Slot{s}); !errors.Is(err, slot.ErrNotSerializable) {
			t.Errorf("Expected NotSerializable error, got %v", err)
		}
	})

	t.Run("RejectsUninitializedLazy", func(t *testing.T) {
		s := slot.NewLazy(slot.StringKey("lazy"), slot.Empty, func() (interface{}, error) { return 1, nil })
		if _, err := FromSlots([]*slot.Slot{s}); !errors.Is(err, slot.ErrNotSerializable) {
			t.Errorf("Expected NotSerializable error, got %v", err)
		}
	})

	t.Run("RejectsComplexValue", func(t *testing.T) {
		s := slot.NewWithValue(slot.StringKey("obj"), slot.Empty, []int{1})
		if _, err := FromSlots([]*slot.Slot{s}); !errors.Is(err, slot.ErrNotSerializable) {
			t.Errorf("Expected NotSerializable error, got %v", err)
		}
	})
}

func TestCodecRoundTrip(t *testing.T) {
	for name, factory := range Codecs {
		t.Run(name, func(t *testing.T) {
			codec := factory()
			if codec.Name() != name {
				t.Errorf("Expected codec name %s, got %s", name, codec.Name())
			}

			snap, err := FromSlots(testSlots())
			if err != nil {
				t.Fatalf("Failed to create snapshot: %v", err)
			}

			var buf bytes.Buffer
			if err := codec.Encode(&buf, snap); err != nil {
				t.Fatalf("Failed to encode: %v", err)
			}
			decoded, err := codec.Decode(&buf)
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}

			if !reflect.DeepEqual(snap, decoded) {
				t.Errorf("Expected decoded snapshot to equal original\noriginal: %+v\ndecoded:  %+v", snap, decoded)
			}

			restored := decoded.Slots()
			for i, s := range testSlots() {
				if restored[i].Key().Type() != s.Key().Type() {
					t.Errorf("Expected key type %s at %d, got %s", s.Key().Type(), i, restored[i].Key().Type())
				}
				if restored[i].Value() != s.Value() {
					t.Errorf("Expected value %v (%T) at %d, got %v (%T)", s.Value(), s.Value(), i, restored[i].Value(), restored[i].Value())
				}
				if restored[i].Attributes() != s.Attributes() {
					t.Errorf("Expected attributes %s at %d, got %s", s.Attributes(), i, restored[i].Attributes())
				}
			}
		})
	}
}

func TestCodecErrors(t *testing.T) {
	t.Run("UnknownCodec", func(t *testing.T) {
		if _, err := ByName("xml"); err == nil {
			t.Errorf("Expected error for unknown codec")
		}
	})

	t.Run("BinaryBadMagic", func(t *testing.T) {
		if _, err := NewBinaryCodec().Decode(bytes.NewReader([]byte("NOTASNAPSHOT"))); err == nil {
			t.Errorf("Expected error for wrong magic number")
		}
	})

	t.Run("BinaryTruncated", func(t *testing.T) {
		snap, _ := FromSlots(testSlots())
		var buf bytes.Buffer
		if err := NewBinaryCodec().Encode(&buf, snap); err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		data := buf.Bytes()[:buf.Len()-3]
		if _, err := NewBinaryCodec().Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Expected error for truncated input")
		}
	})

	t.Run("JSONWrongVersion", func(t *testing.T) {
		in := `{"version": 99, "entries": []}`
		if _, err := NewJSONCodec().Decode(bytes.NewReader([]byte(in))); err == nil {
			t.Errorf("Expected error for unsupported version")
		}
	})
}
