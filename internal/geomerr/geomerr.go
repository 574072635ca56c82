// Package geomerr defines the closed set of error kinds raised by the
// geometry resolution pipeline. Every fallible operation in this module
// returns a *geomerr.Error (or nil); panics are reserved for programmer
// mistakes such as a nil SurfaceMap, mirroring how gofem's main.go
// reserves panic/recover for top-level fatal failures only.
package geomerr

import "fmt"

// Kind is the closed set of error categories from spec.md §7.
type Kind int

const (
	BadCard Kind = iota
	UnknownSymbol
	DuplicateId
	DuplicateName
	UndefinedTr
	CircularReference
	MacroExpansionFailed
	InfiniteLattice
	ExcessMaxIndex
	Timeout
	Cancelled
	OutOfMemory
	NumericDomain
	DegenerateGeometry
)

func (k Kind) String() string {
	switch k {
	case BadCard:
		return "BadCard"
	case UnknownSymbol:
		return "UnknownSymbol"
	case DuplicateId:
		return "DuplicateId"
	case DuplicateName:
		return "DuplicateName"
	case UndefinedTr:
		return "UndefinedTr"
	case CircularReference:
		return "CircularReference"
	case MacroExpansionFailed:
		return "MacroExpansionFailed"
	case InfiniteLattice:
		return "InfiniteLattice"
	case ExcessMaxIndex:
		return "ExcessMaxIndex"
	case Timeout:
		return "Timeout"
	case Cancelled:
		return "Cancelled"
	case OutOfMemory:
		return "OutOfMemory"
	case NumericDomain:
		return "NumericDomain"
	case DegenerateGeometry:
		return "DegenerateGeometry"
	default:
		return "Unknown"
	}
}

// Error is the single error type propagated across the pipeline.
type Error struct {
	K       Kind
	File    string // originating file, when known
	Line    int    // originating line, when known
	What    string
	wrapped error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.K, e.What)
	}
	return fmt.Sprintf("%s: %s", e.K, e.What)
}

func (e *Error) Unwrap() error { return e.wrapped }

// GetKind reports the closed-set tag of err, or a zero Kind and false if
// err is not a *Error.
func GetKind(err error) (Kind, bool) {
	ge, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return ge.K, true
}

// New builds an Error with no card-location context.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{K: k, What: fmt.Sprintf(format, args...)}
}

// At builds an Error with file:line context, as produced by the card
// parsers (C5/C7).
func At(k Kind, file string, line int, format string, args ...interface{}) *Error {
	return &Error{K: k, File: file, Line: line, What: fmt.Sprintf(format, args...)}
}

// Wrap attaches err as the cause of a new Error of kind k.
func Wrap(k Kind, err error, format string, args ...interface{}) *Error {
	return &Error{K: k, What: fmt.Sprintf(format, args...), wrapped: err}
}

// ExitCode maps a Kind to the CLI exit code table of spec.md §6.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	k, ok := GetKind(err)
	if !ok {
		return 1
	}
	switch k {
	case BadCard, UnknownSymbol, DuplicateId, DuplicateName, UndefinedTr, NumericDomain, DegenerateGeometry:
		return 1
	case CircularReference:
		return 2
	case MacroExpansionFailed:
		return 3
	case InfiniteLattice, ExcessMaxIndex:
		return 4
	case Timeout:
		return 4
	case OutOfMemory:
		return 5
	case Cancelled:
		return 6
	default:
		return 1
	}
}
