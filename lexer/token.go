package lexer

import (
	"github.com/ava12/barg/source"
)

// Token is an immutable lexeme.
type Token struct {
	kind   Kind
	name   string
	value  string
	source *source.Source
	line   int
	col    int
}

// NewToken creates a token positioned at byte offset pos of s, s may be nil.
func NewToken(kind Kind, name, value string, s *source.Source, pos int) Token {
	t := Token{kind: kind, name: name, value: value, source: s}
	if s != nil {
		t.line, t.col = s.LineCol(pos)
	}
	return t
}

// EofToken returns the token marking the end of s.
func EofToken(s *source.Source) Token {
	pos := 0
	if s != nil {
		pos = s.Len()
	}
	return NewToken(EofKind, EofKindName, "", s, pos)
}

func (t Token) Kind() Kind {
	return t.kind
}

// KindName returns the name of the rule that produced the token.
func (t Token) KindName() string {
	return t.name
}

func (t Token) Text() string {
	return t.value
}

func (t Token) Source() *source.Source {
	return t.source
}

func (t Token) SourceName() string {
	if t.source == nil {
		return ""
	}
	return t.source.Name()
}

func (t Token) Line() int {
	return t.line
}

func (t Token) Col() int {
	return t.col
}

func (t Token) IsEof() bool {
	return t.kind == EofKind
}
