// Package lexer defines lexical analyzer.
package lexer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/source"
)

// Kind is a token type, any non-negative value may be used by lexer users.
type Kind int

const (
	// EofKind is the kind of the final token returned by Tokenize.
	EofKind Kind = -1

	// EofKindName is the name for EofKind.
	EofKindName = "-end-of-file-"
)

// Error codes used by lexer:
const (
	// WrongCharError indicates that strict lexer cannot fetch any token at current position.
	// Error message contains the rune at current source position.
	WrongCharError = err.LexicalErrors + iota

	// WrongRuleError indicates that a rule pattern is incorrect.
	WrongRuleError
)

// Rule describes one token type.
// Pattern must not contain capturing groups and must not be anchored.
type Rule struct {
	Kind    Kind
	Name    string
	Pattern string
}

// CommentChar starts a comment running up to the end of line.
const CommentChar = '#'

// Lexer performs lexical analysis of a source using ordered rules.
// At every position the first rule (in declaration order) matching there wins,
// not the longest one. Characters no rule matches are skipped.
// Lexer is immutable and safe for concurrent use.
type Lexer struct {
	rules  []Rule
	re     *regexp.Regexp
	strict bool
	log    *zap.Logger
}

// Option configures Lexer.
type Option func(*Lexer)

// Strict makes Tokenize fail on skipped characters other than white space.
func Strict() Option {
	return func(l *Lexer) {
		l.strict = true
	}
}

// WithLogger sets logger receiving debug entries about skipped characters.
func WithLogger(log *zap.Logger) Option {
	return func(l *Lexer) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates new Lexer.
// Each rule becomes one capturing group of combined regular expression, so the
// leftmost-first semantics of alternation preserves rule order.
func New(rules []Rule, opts ...Option) (*Lexer, error) {
	groups := make([]string, len(rules))
	for i, r := range rules {
		groups[i] = "(" + r.Pattern + ")"
	}

	re, e := regexp.Compile(`^(?:` + strings.Join(groups, "|") + `)`)
	if e != nil {
		return nil, err.Format(WrongRuleError, "incorrect token rules (%s)", e.Error())
	}
	if re.NumSubexp() != len(rules) {
		return nil, err.Format(WrongRuleError, "token rules must not contain capturing groups")
	}

	l := &Lexer{rules: append([]Rule(nil), rules...), re: re, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MustNew is like New but panics on error.
func MustNew(rules []Rule, opts ...Option) *Lexer {
	l, e := New(rules, opts...)
	if e != nil {
		panic(e)
	}
	return l
}

// Rules returns a copy of lexer rules.
func (l *Lexer) Rules() []Rule {
	return append([]Rule(nil), l.rules...)
}

func wrongCharError(s *source.Source, r rune, pos int) *err.Error {
	line, col := s.LineCol(pos)
	msg := fmt.Sprintf("wrong char \"%c\" (u+%x)", r, r)
	return err.New(WrongCharError, msg, s.Name(), line, col)
}

// Tokenize splits the whole source into tokens.
// The last token is always of EofKind.
// Returns nil and *errors.Error only in strict mode.
func (l *Lexer) Tokenize(s *source.Source) ([]Token, error) {
	content := s.Content()
	tokens := make([]Token, 0, len(content)/4+1)
	pos := 0

	for pos < len(content) {
		if content[pos] == CommentChar {
			nl := bytes.IndexByte(content[pos:], '\n')
			if nl < 0 {
				break
			}
			pos += nl
			continue
		}

		match := l.re.FindSubmatchIndex(content[pos:])
		if len(match) != 0 && match[1] > 0 {
			for i := 2; i < len(match); i += 2 {
				if match[i] < 0 {
					continue
				}

				r := l.rules[(i>>1)-1]
				text := string(content[pos+match[i] : pos+match[i+1]])
				tokens = append(tokens, NewToken(r.Kind, r.Name, text, s, pos+match[i]))
				break
			}
			pos += match[1]
			continue
		}

		r, size := utf8.DecodeRune(content[pos:])
		if !unicode.IsSpace(r) {
			if l.strict {
				return nil, wrongCharError(s, r, pos)
			}

			line, col := s.LineCol(pos)
			l.log.Debug("skipping unrecognized character",
				zap.String("source", s.Name()),
				zap.String("char", string(r)),
				zap.Int("line", line),
				zap.Int("col", col))
		}
		pos += size
	}

	return append(tokens, EofToken(s)), nil
}
