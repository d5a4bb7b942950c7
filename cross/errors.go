package cross

import (
	"fmt"

	"github.com/gogpu/spvcross/internal/engine"
)

// ErrorCode classifies a failed call.
type ErrorCode uint8

// Error codes. Engine statuses without a counterpart map to Unhandled.
const (
	// Unhandled covers every failure without a more specific code: unknown
	// ids, unrecognized engine statuses and enum values, text that is not
	// valid UTF-8 and calls on a closed Compiler.
	Unhandled ErrorCode = iota

	// NotDecorated means the id carries no decoration of the requested kind.
	NotDecorated

	// CompilationError means the code emitter rejected the module.
	CompilationError
)

func (c ErrorCode) String() string {
	switch c {
	case Unhandled:
		return "Unhandled"
	case NotDecorated:
		return "NotDecorated"
	case CompilationError:
		return "CompilationError"
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// Error is the error type returned by every Compiler method.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "spvcross: " + e.Code.String()
	}
	return fmt.Sprintf("spvcross: %s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, ErrNotDecorated) works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnhandled        = &Error{Code: Unhandled}
	ErrNotDecorated     = &Error{Code: NotDecorated}
	ErrCompilationError = &Error{Code: CompilationError}
)

var errClosed = &Error{Code: Unhandled, Message: "compiler is closed"}

// statusError converts an engine status. Success is nil; any status without
// a public counterpart collapses to Unhandled.
func statusError(status engine.Status, op string) error {
	switch status {
	case engine.Success:
		return nil
	case engine.NotDecorated:
		return &Error{Code: NotDecorated, Message: op}
	case engine.CompilationError:
		return &Error{Code: CompilationError, Message: op}
	}
	return &Error{Code: Unhandled, Message: fmt.Sprintf("%s: %s", op, status)}
}

// compileError is statusError for Compile. A CompilationError carries the
// emitter message the engine recorded on this handle.
func compileError(e engine.Compiler, status engine.Status) error {
	if status == engine.CompilationError {
		if msg := e.LastError(); msg != "" {
			return &Error{Code: CompilationError, Message: msg}
		}
	}
	return statusError(status, "compile")
}

func unhandled(format string, args ...any) error {
	return &Error{Code: Unhandled, Message: fmt.Sprintf(format, args...)}
}
