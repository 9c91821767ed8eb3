/*
Package jetpeg is a parsing expression grammar compiler.

Consists of subpackages:
  - cmd/jetpeg: console utility to check grammars, show rule layouts, and match files;
  - grammar: expression tree of parsing expressions and rules;
  - langdef: converts textual grammar description to expression tree;
  - lexer: lexical analyzer used by langdef;
  - optimizer: rewrites choices sharing a leftmost primary;
  - layout: computes result value types and their storage layout;
  - parser: compiles expression tree to matching procedures and runs matches;
  - failure: furthest failure tracking and parsing errors;
  - output: construction events emitted for successful matches and the default value builder;
  - realize: turns built values into host objects;
  - source: named sources and position information.

Typical usage is:

1. Describe grammar rules using `rule <name> ... end` blocks.

2. Parse grammar description using langdef package.

3. Compile the grammar with parser.New and match inputs against any rule.

4. Optionally pass results through realize package to construct host objects.
*/
package jetpeg

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors     = 1   // used by langdef
	LexicalErrors     = 101 // used by lexer
	CompilationErrors = 201 // used by langdef, layout, and parser while compiling a grammar
	ParsingErrors     = 301 // used by failure
	ArgumentErrors    = 401 // used by parser entry points
	RealizeErrors     = 501 // used by realize
)

// Error is the error type used by jetpeg subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including rule name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int

	// Rule contains the name of the rule owning the erroneous expression or empty string.
	Rule string
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{Code: code, Message: msg, SourceName: name, Line: line, Col: col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// FormatRuleError creates Error structure attached to a rule.
// Rule name is prepended to error message.
func FormatRuleError(rule string, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	e := NewError(code, "rule "+rule+": "+msg, "", 0, 0)
	e.Rule = rule
	return e
}

// InternalError is the panic value used when a compiled grammar breaks its own invariants.
// It signals a defect, never a problem with the grammar or the input.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "jetpeg internal error: " + e.Message
}

// Internalf panics with InternalError.
func Internalf(msg string, params ...any) {
	panic(&InternalError{fmt.Sprintf(msg, params...)})
}
