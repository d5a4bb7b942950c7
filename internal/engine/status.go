package engine

import "fmt"

// Status is the result code of every engine call.
type Status int32

// Engine status codes. Only Success means the call's outputs were written.
const (
	Success Status = iota
	Unhandled
	InvalidID
	NotDecorated
	CompilationError
	InvalidModule
	InvalidPointer
	InvalidArgument
)

var statusNames = [...]string{
	Success:          "Success",
	Unhandled:        "Unhandled",
	InvalidID:        "InvalidID",
	NotDecorated:     "NotDecorated",
	CompilationError: "CompilationError",
	InvalidModule:    "InvalidModule",
	InvalidPointer:   "InvalidPointer",
	InvalidArgument:  "InvalidArgument",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}
