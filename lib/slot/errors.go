package slot

import "fmt"

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess           RetCode = iota // 0: no error
	RetCInternalError                    // 1: unexpected internal state
	RetCInvalidAttributes                // 2: attribute bitmask with unknown bits
	RetCInvalidCapacity                  // 3: capacity must be positive
	RetCReadOnly                         // 4: write to a read-only slot in strict mode
	RetCNoSetter                         // 5: accessor has a getter but no setter (strict mode)
	RetCInvalidOperation                 // 6: operation not allowed in the current state
	RetCNotSerializable                  // 7: slot can't be written to a snapshot
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidAttributes:
		return "InvalidAttributes"
	case RetCInvalidCapacity:
		return "InvalidCapacity"
	case RetCReadOnly:
		return "ReadOnly"
	case RetCNoSetter:
		return "NoSetter"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCNotSerializable:
		return "NotSerializable"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and a message. Errors with the same code match
// each other with errors.Is when the target has no message, so the Err*
// values below can be used as sentinels.
type Error struct {
	Code RetCode
	Msg  string
}

// Sentinels for errors.Is
var (
	ErrInvalidAttributes = &Error{Code: RetCInvalidAttributes}
	ErrInvalidCapacity   = &Error{Code: RetCInvalidCapacity}
	ErrReadOnly          = &Error{Code: RetCReadOnly}
	ErrNoSetter          = &Error{Code: RetCNoSetter}
	ErrInvalidOperation  = &Error{Code: RetCInvalidOperation}
	ErrNotSerializable   = &Error{Code: RetCNotSerializable}
)

// NewError creates a new Error with the given code and message
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Errorf creates a new Error with a formatted message
func Errorf(code RetCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("SlotError (code %s): %s", e.Code, e.Msg)
}

// Is matches errors carrying the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Msg == "" || t.Msg == e.Msg)
}

// NoSetterError is returned in strict mode when a value is assigned to an
// accessor-style slot that has a getter but no setter.
type NoSetterError struct {
	Key   Key
	Value interface{}
}

func (e *NoSetterError) Error() string {
	return fmt.Sprintf("SlotError (code %s): property '%s' has only a getter", RetCNoSetter, e.Key)
}

// Is lets errors.Is(err, ErrNoSetter) match
func (e *NoSetterError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == RetCNoSetter && t.Msg == ""
}
