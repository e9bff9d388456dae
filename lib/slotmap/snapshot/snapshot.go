package snapshot

import (
	"github.com/ValentinKolb/dSlot/lib/slot"
)

// Version of the snapshot model written by all codecs
const Version = 1

// --------------------------------------------------------------------------
// Value Type
// --------------------------------------------------------------------------

type ValueType uint8

const (
	VTNil ValueType = iota
	VTBool
	VTInt
	VTInt64
	VTFloat
	VTString
)

func (t ValueType) String() string {
	switch t {
	case VTNil:
		return "nil"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTInt64:
		return "int64"
	case VTFloat:
		return "float64"
	case VTString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a primitive slot value. Only the field selected by Type is used.
type Value struct {
	Type   ValueType `json:"type"`
	Bool   bool      `json:"bool,omitempty"`
	Int    int64     `json:"int,omitempty"`
	Float  float64   `json:"float,omitempty"`
	String string    `json:"string,omitempty"`
}

// NewValue converts v into a Value. Values other than nil, bool, int, int64,
// float64 and string are rejected.
func NewValue(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{Type: VTNil}, nil
	case bool:
		return Value{Type: VTBool, Bool: x}, nil
	case int:
		return Value{Type: VTInt, Int: int64(x)}, nil
	case int64:
		return Value{Type: VTInt64, Int: x}, nil
	case float64:
		return Value{Type: VTFloat, Float: x}, nil
	case string:
		return Value{Type: VTString, String: x}, nil
	default:
		return Value{}, slot.Errorf(slot.RetCNotSerializable, "value of type %T is not serializable", v)
	}
}

// Interface returns the Go value
func (v Value) Interface() interface{} {
	switch v.Type {
	case VTBool:
		return v.Bool
	case VTInt:
		return int(v.Int)
	case VTInt64:
		return v.Int
	case VTFloat:
		return v.Float
	case VTString:
		return v.String
	default:
		return nil
	}
}

// --------------------------------------------------------------------------
// Snapshot Model
// --------------------------------------------------------------------------

// Entry is one saved slot
type Entry struct {
	KeyType    slot.KeyType    `json:"key_type"`
	Name       string          `json:"name,omitempty"` // string name or symbol description
	Index      int32           `json:"index,omitempty"`
	Attributes slot.Attributes `json:"attributes"`
	Value      Value           `json:"value"`
}

// Key rebuilds the slot key. Symbols can't be restored by identity, a symbol
// key is restored as a new symbol with the saved description.
func (e Entry) Key() slot.Key {
	switch e.KeyType {
	case slot.KeyTString:
		return slot.StringKey(e.Name)
	case slot.KeyTSymbol:
		return slot.SymbolKey(slot.NewSymbol(e.Name))
	default:
		return slot.IndexKey(e.Index)
	}
}

// Snapshot holds the slots of a table in insertion order
type Snapshot struct {
	Version uint8   `json:"version"`
	Entries []Entry `json:"entries"`
}

// FromSlots captures the given slots. Plain value slots and initialized lazy
// slots holding primitive values can be saved, every other slot is rejected.
func FromSlots(slots []*slot.Slot) (*Snapshot, error) {
	snap := &Snapshot{Version: Version, Entries: make([]Entry, 0, len(slots))}
	for _, s := range slots {
		switch {
		case s.Kind() == slot.KindValue:
		case s.Kind() == slot.KindLazy && s.IsInitialized():
		default:
			return nil, slot.Errorf(slot.RetCNotSerializable, "%s slot '%s' is not serializable", s.Kind(), s.Key())
		}

		v, err := NewValue(s.Value())
		if err != nil {
			return nil, slot.Errorf(slot.RetCNotSerializable, "slot '%s': %s", s.Key(), err)
		}

		key := s.Key()
		e := Entry{KeyType: key.Type(), Attributes: s.Attributes(), Value: v}
		switch key.Type() {
		case slot.KeyTString:
			e.Name = key.Name()
		case slot.KeyTSymbol:
			e.Name = key.Symbol().Description()
		default:
			e.Index = key.Index()
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap, nil
}

// Slots creates plain value slots for all entries in saved order
func (s *Snapshot) Slots() []*slot.Slot {
	slots := make([]*slot.Slot, len(s.Entries))
	for i, e := range s.Entries {
		slots[i] = slot.NewWithValue(e.Key(), e.Attributes, e.Value.Interface())
	}
	return slots
}
