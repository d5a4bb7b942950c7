package ir

import "fmt"

// ErrorKind categorizes module loading and lowering errors.
type ErrorKind uint8

const (
	// ErrInvalidModule indicates the SPIR-V module is malformed.
	ErrInvalidModule ErrorKind = iota

	// ErrInvalidID indicates an id that no instruction in the module defines.
	ErrInvalidID

	// ErrUnsupportedFeature indicates an instruction or construct that cannot be lowered.
	ErrUnsupportedFeature

	// ErrUnstructured indicates control flow that does not follow the structured rules.
	ErrUnstructured
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidModule:
		return "InvalidModule"
	case ErrInvalidID:
		return "InvalidID"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrUnstructured:
		return "Unstructured"
	default:
		return "Unknown"
	}
}

// Error is returned by Load and Lower.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// ID is the id the error concerns, zero when none applies.
	ID uint32

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("ir %s at %%%d: %s", e.Kind, e.ID, e.Message)
	}
	return fmt.Sprintf("ir %s: %s", e.Kind, e.Message)
}

// NewError creates an error that is not tied to an id.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errorAt(kind ErrorKind, id uint32, format string, args ...any) *Error {
	return &Error{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)}
}

// IsUnsupportedFeature returns true if the error is ErrUnsupportedFeature.
func (e *Error) IsUnsupportedFeature() bool {
	return e.Kind == ErrUnsupportedFeature
}
