// Package errors defines the error type shared by barg subpackages.
//
// Every error carries a numeric code. Codes below InternalErrors describe problems
// in a grammar definition or in the way a transform was invoked (bad grammar errors);
// codes starting at InternalErrors describe broken invariants of the engine itself.
package errors

import (
	"errors"
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors   = 1   // used by parser
	LexicalErrors   = 101 // used by lexer
	MatchErrors     = 201 // used by ast
	TransformErrors = 301 // used by transform
	InternalErrors  = 901 // used by any package for engine bugs
)

// Kind partitions the error space.
type Kind int

const (
	// BadGrammar is an expected, user facing failure of a grammar or transform invocation.
	BadGrammar Kind = iota
	// Internal is an invariant violation inside the engine.
	Internal
)

func (k Kind) String() string {
	if k == Internal {
		return "internal error"
	}
	return "bad grammar"
}

// Error is the error type used by barg subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains grammar source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source or 0.
	Line int

	// Col contains column number in source or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// lexer.Token implements this interface.
type SourcePos interface {
	SourceName() string
	Line() int
	Col() int
}

// New creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func New(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// Kind returns Internal for codes of InternalErrors class and BadGrammar otherwise.
func (e *Error) Kind() Kind {
	if e.Code >= InternalErrors {
		return Internal
	}
	return BadGrammar
}

// Format creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func Format(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return New(code, msg, "", 0, 0)
}

// FormatPos creates Error structure with source and position information.
// pos must not be nil.
func FormatPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return New(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// At returns a copy of e positioned at pos.
// e is returned as is if it already has position information.
func At(pos SourcePos, e *Error) *Error {
	if e.Line != 0 {
		return e
	}
	return New(e.Code, e.Message, pos.SourceName(), pos.Line(), pos.Col())
}

// Code returns the code of the first *Error in e's chain or 0.
func Code(e error) int {
	var be *Error
	if errors.As(e, &be) {
		return be.Code
	}
	return 0
}

// IsBadGrammar reports whether e's chain contains a bad grammar *Error.
func IsBadGrammar(e error) bool {
	var be *Error
	return errors.As(e, &be) && be.Kind() == BadGrammar
}

// IsInternal reports whether e's chain contains an internal *Error.
func IsInternal(e error) bool {
	var be *Error
	return errors.As(e, &be) && be.Kind() == Internal
}
