// Package diag carries source positions and the error taxonomy shared by
// the encoding backend. Every failure in this subsystem is fatal to the
// compilation run; errors are reported once with position information and
// never retried.
package diag

import (
	"errors"
	"fmt"
)

// Position identifies a location in a source file for diagnostics.
type Position struct {
	File string
	Line int // 1-based line number
}

func (p Position) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Kind classifies an error. The set is closed: the backend has a fixed
// failure taxonomy and callers dispatch on it with IsKind.
type Kind int

const (
	// Script is a general authoring error without a more specific kind.
	Script Kind = iota

	// ResourceExhausted means the fixed id space is fully consumed.
	ResourceExhausted

	// DuplicateDefinition means a name was reused for a second block.
	DuplicateDefinition

	// CapacityExceeded means a bit reservation overran the 32-bit budget.
	CapacityExceeded

	// EmptyTranslationSet means style resolution produced zero entries.
	EmptyTranslationSet

	// EncodingViolation means a non-ASCII string reached an ASCII-only
	// emission context.
	EncodingViolation

	// FrameSizeMismatch means a record's declared length disagrees with
	// the bytes actually written. This is an internal assertion; it is
	// raised as a panic, never returned.
	FrameSizeMismatch
)

// String returns a human-readable name for Kind.
func (k Kind) String() string {
	switch k {
	case Script:
		return "error"
	case ResourceExhausted:
		return "resource exhausted"
	case DuplicateDefinition:
		return "duplicate definition"
	case CapacityExceeded:
		return "capacity exceeded"
	case EmptyTranslationSet:
		return "empty translation set"
	case EncodingViolation:
		return "encoding violation"
	case FrameSizeMismatch:
		return "frame size mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error is a position-tagged compilation error.
type Error struct {
	Kind Kind
	Msg  string
	Pos  Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Errorf builds an Error of the given kind at the given position.
func Errorf(kind Kind, pos Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// IsKind reports whether err is (or wraps) an Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
