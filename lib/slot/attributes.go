package slot

import "strings"

// Attributes is the attribute bitmask of a slot
type Attributes uint32

const (
	ReadOnly  Attributes = 1 << iota // value can't be changed
	DontEnum                         // skipped by enumeration
	Permanent                        // can't be deleted or reconfigured
	Const                            // const binding that is not yet initialized

	// Empty means a writable, enumerable, configurable property
	Empty Attributes = 0

	validAttributes = ReadOnly | DontEnum | Permanent | Const
)

// CheckAttributes rejects bitmasks with bits outside of ReadOnly, DontEnum,
// Permanent and Const.
func CheckAttributes(attrs Attributes) error {
	if attrs&^validAttributes != 0 {
		return Errorf(RetCInvalidAttributes, "invalid attributes: 0x%x", uint32(attrs))
	}
	return nil
}

// Has reports whether all bits of flag are set
func (a Attributes) Has(flag Attributes) bool {
	return a&flag == flag
}

func (a Attributes) String() string {
	if a == Empty {
		return "Empty"
	}
	var parts []string
	if a.Has(ReadOnly) {
		parts = append(parts, "ReadOnly")
	}
	if a.Has(DontEnum) {
		parts = append(parts, "DontEnum")
	}
	if a.Has(Permanent) {
		parts = append(parts, "Permanent")
	}
	if a.Has(Const) {
		parts = append(parts, "Const")
	}
	if rest := a &^ validAttributes; rest != 0 {
		parts = append(parts, "Invalid")
	}
	return strings.Join(parts, "|")
}
