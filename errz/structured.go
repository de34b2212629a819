// Package errz defines the structured error type surfaced by the
// preprocessing pipeline. Every fatal failure carries a kind, a byte offset,
// and a one-line human message.
package errz

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrParse indicates the source could not be parsed.
	ErrParse ErrorKind = iota
	// ErrLex indicates a lexical failure, including unbalanced macro markers.
	ErrLex
	// ErrEval indicates a failure evaluating macro payloads or the config.
	ErrEval
	// ErrEmit indicates the emitter produced or would produce invalid output.
	ErrEmit
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "parse error"
	case ErrLex:
		return "lex error"
	case ErrEval:
		return "eval error"
	case ErrEmit:
		return "emit error"
	default:
		return "error"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Offset   int    // byte offset into the input
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // the line of source code, when available
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// StructuredError is a rich error type with a kind, source location, and
// optional underlying cause.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location SourceLocation
	Cause    error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%d:%d)",
		e.Kind.String(), e.Message, e.Location.Line, e.Location.Column)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns a human-friendly error message with visual
// context including a source snippet and caret.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	if e.Location.IsZero() {
		msg.WriteString(fmt.Sprintf("%s: %s\n", e.Kind.String(), e.Message))
	} else {
		msg.WriteString(fmt.Sprintf("%s: %s (%d:%d)\n",
			e.Kind.String(), e.Message, e.Location.Line, e.Location.Column))
	}
	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}
	return msg.String()
}

// New creates a new StructuredError with the given parameters.
func New(kind ErrorKind, message string, loc SourceLocation) *StructuredError {
	return &StructuredError{Message: message, Kind: kind, Location: loc}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(kind ErrorKind, loc SourceLocation, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: loc,
	}
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}
