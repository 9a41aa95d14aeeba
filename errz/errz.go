// Package errz defines the error taxonomy shared by the parser, the
// bytecode compiler, both execution backends, and the JIT.
package errz

import (
	"errors"
	"fmt"
)

// Kind is the category of an error.
type Kind int

const (
	// Syntax indicates malformed source text discovered at parse time.
	Syntax Kind = iota
	// Compile indicates a JIT-time error: an unregistered function or
	// variable, or an instruction outside the JIT subset.
	Compile
	// Type indicates an operand of the wrong runtime type for an operation.
	Type
	// Runtime indicates a general execution error: undefined variable,
	// function, or property, stack underflow, or division by zero.
	Runtime
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case Compile:
		return "compile error"
	case Type:
		return "type error"
	case Runtime:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is a categorized engine error. All engine failures are returned as
// values of this type; the engine never panics on malformed input.
type Error struct {
	kind    Kind
	message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind.String(), e.message)
}

// Kind returns the category of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the error message without the kind prefix.
func (e *Error) Message() string {
	return e.message
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// SyntaxErrorf creates a Syntax kind error.
func SyntaxErrorf(format string, args ...interface{}) *Error {
	return &Error{kind: Syntax, message: fmt.Sprintf(format, args...)}
}

// CompileErrorf creates a Compile kind error.
func CompileErrorf(format string, args ...interface{}) *Error {
	return &Error{kind: Compile, message: fmt.Sprintf(format, args...)}
}

// TypeErrorf creates a Type kind error.
func TypeErrorf(format string, args ...interface{}) *Error {
	return &Error{kind: Type, message: fmt.Sprintf(format, args...)}
}

// RuntimeErrorf creates a Runtime kind error.
func RuntimeErrorf(format string, args ...interface{}) *Error {
	return &Error{kind: Runtime, message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == kind
}
