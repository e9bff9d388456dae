package slot

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
)

// --------------------------------------------------------------------------
// Symbols
// --------------------------------------------------------------------------

// Symbol is a property name with identity semantics: two symbols are the same
// key only if they are the same *Symbol, regardless of their description.
type Symbol struct {
	description string
	hash        int32
}

// NewSymbol creates a new unique symbol
func NewSymbol(description string) *Symbol {
	return &Symbol{
		description: description,
		hash:        util.Fold32(util.GenerateSeed()),
	}
}

// Description returns the description the symbol was created with
func (s *Symbol) Description() string {
	return s.description
}

func (s *Symbol) String() string {
	return "Symbol(" + s.description + ")"
}

// --------------------------------------------------------------------------
// Keys
// --------------------------------------------------------------------------

// KeyType tells which identity a Key carries
type KeyType uint8

const (
	KeyTIndex  KeyType = iota // integer index, no name
	KeyTString                // string property name
	KeyTSymbol                // symbol identity
)

func (t KeyType) String() string {
	switch t {
	case KeyTIndex:
		return "Index"
	case KeyTString:
		return "String"
	case KeyTSymbol:
		return "Symbol"
	default:
		return "Unknown"
	}
}

// Key identifies a slot. It is either a name (string or symbol) or, when the
// name is absent, an integer index. Keys are comparable with == and can be
// used as map keys. The zero Key is index 0.
type Key struct {
	typ   KeyType
	name  string
	sym   *Symbol
	index int32
	hash  int32
}

// StringKey returns the key for a string property name
func StringKey(name string) Key {
	return Key{typ: KeyTString, name: name, hash: util.StringHash(name)}
}

// SymbolKey returns the key for a symbol
func SymbolKey(sym *Symbol) Key {
	return Key{typ: KeyTSymbol, sym: sym, hash: sym.hash}
}

// IndexKey returns the key for an array index
func IndexKey(index int32) Key {
	return Key{typ: KeyTIndex, index: index, hash: index}
}

// Type returns the kind of identity of the key
func (k Key) Type() KeyType { return k.typ }

// IsIndex reports whether the key has no name and is identified by its index
func (k Key) IsIndex() bool { return k.typ == KeyTIndex }

// Name returns the string name (empty for index and symbol keys)
func (k Key) Name() string { return k.name }

// Symbol returns the symbol (nil for index and string keys)
func (k Key) Symbol() *Symbol { return k.sym }

// Index returns the index of an index key (0 for named keys)
func (k Key) Index() int32 { return k.index }

// Hash returns the index-or-hash value of the key: the name's hash for named
// keys and the raw index otherwise. It selects the bucket in slot tables.
func (k Key) Hash() int32 { return k.hash }

func (k Key) String() string {
	switch k.typ {
	case KeyTString:
		return k.name
	case KeyTSymbol:
		return k.sym.String()
	case KeyTIndex:
		return strconv.FormatInt(int64(k.index), 10)
	default:
		return fmt.Sprintf("Key(%d)", k.typ)
	}
}
