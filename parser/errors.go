package parser

import (
	"strings"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/lexer"
)

// Error codes used by parser, see also ast error codes:
const (
	UnexpectedEofError = err.GrammarErrors + iota
	UnexpectedTokenError
	DuplicateRuleError
	WrongNumberError
	UndefinedRulesError
	LeftRecursionError
	UnreachableRulesError
)

func eofError(t lexer.Token, expected string) *err.Error {
	return err.FormatPos(t, UnexpectedEofError, "unexpected end of file, expecting %s", expected)
}

func unexpectedTokenError(t lexer.Token, expected string) *err.Error {
	return err.FormatPos(t, UnexpectedTokenError, "unexpected %q, expecting %s", t.Text(), expected)
}

func duplicateRuleError(t lexer.Token) *err.Error {
	return err.FormatPos(t, DuplicateRuleError, "rule %q already defined", t.Text())
}

func wrongNumberError(t lexer.Token) *err.Error {
	return err.FormatPos(t, WrongNumberError, "incorrect number %s", t.Text())
}

// positioned adds token position to e if e is *errors.Error without one.
func positioned(t lexer.Token, e error) error {
	if pe, is := e.(*err.Error); is {
		return err.At(t, pe)
	}
	return e
}

func undefinedRulesError(names []string) *err.Error {
	return err.Format(UndefinedRulesError, "undefined rules: "+strings.Join(names, ", "))
}

func leftRecursionError(names []string) *err.Error {
	return err.Format(LeftRecursionError, "found left-recursive rules: "+strings.Join(names, ", "))
}

func unreachableRulesError(names []string) *err.Error {
	return err.Format(UnreachableRulesError, "unreachable rules: "+strings.Join(names, ", "))
}
