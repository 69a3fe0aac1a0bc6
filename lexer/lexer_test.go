package lexer

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/source"
)

const (
	keywordKind Kind = iota
	nameKind
	numberKind
	opKind
)

var testRules = []Rule{
	{keywordKind, "keyword", `let\b`},
	{nameKind, "name", `[a-z_][a-z0-9_]*`},
	{numberKind, "number", `\d+`},
	{opKind, "op", `==|=`},
}

func tokenize(t *testing.T, src string, opts ...Option) []Token {
	l := MustNew(testRules, opts...)
	tokens, e := l.Tokenize(source.NewString("src", src))
	if e != nil {
		t.Fatalf("source %q: unexpected error %s", src, e)
	}
	return tokens
}

func texts(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if tok.IsEof() {
			parts[i] = tok.KindName()
		} else {
			parts[i] = tok.KindName() + ":" + tok.Text()
		}
	}
	return strings.Join(parts, " ")
}

func TestEmpty(t *testing.T) {
	sources := []string{"", " ", "  ", " \t\r\n ", "# comment only"}
	for _, src := range sources {
		tokens := tokenize(t, src)
		if len(tokens) != 1 || !tokens[0].IsEof() {
			t.Fatalf("source %q: expecting single EoF token, got %s", src, texts(tokens))
		}
	}
}

func TestRuleOrder(t *testing.T) {
	samples := []struct {
		src, expected string
	}{
		{"let x = 1", "keyword:let name:x op:= number:1 " + EofKindName},
		{"letter", "name:letter " + EofKindName},
		{"a==b", "name:a op:== name:b " + EofKindName},
		{"x1 2y", "name:x1 number:2 name:y " + EofKindName},
	}
	for i, s := range samples {
		got := texts(tokenize(t, s.src))
		if got != s.expected {
			t.Fatalf("sample #%d: expecting %q, got %q", i, s.expected, got)
		}
	}
}

func TestFirstRuleWins(t *testing.T) {
	rules := []Rule{{opKind, "short", `=`}, {opKind, "long", `==`}}
	tokens, e := MustNew(rules).Tokenize(source.NewString("", "=="))
	if e != nil {
		t.Fatal(e)
	}
	if got := texts(tokens); got != "short:= short:= "+EofKindName {
		t.Fatalf("expecting two short tokens, got %q", got)
	}
}

func TestComments(t *testing.T) {
	tokens := tokenize(t, "a # b c\n# d\ne #")
	if got := texts(tokens); got != "name:a name:e "+EofKindName {
		t.Fatalf("unexpected tokens %q", got)
	}
	if tokens[1].Line() != 3 || tokens[1].Col() != 1 {
		t.Fatalf("expecting e at line 3 col 1, got %d, %d", tokens[1].Line(), tokens[1].Col())
	}
}

func TestPositions(t *testing.T) {
	tokens := tokenize(t, "let\n  foo =\n\n42")
	expected := [][2]int{{1, 1}, {2, 3}, {2, 7}, {4, 1}, {4, 3}}
	for i, pos := range expected {
		if tokens[i].Line() != pos[0] || tokens[i].Col() != pos[1] {
			t.Fatalf("token #%d: expecting line %d col %d, got %d, %d",
				i, pos[0], pos[1], tokens[i].Line(), tokens[i].Col())
		}
	}
	if tokens[0].SourceName() != "src" {
		t.Fatalf("expecting source name, got %q", tokens[0].SourceName())
	}
}

func TestSkippedChars(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tokens := tokenize(t, "a @ b", WithLogger(zap.New(core)))
	if got := texts(tokens); got != "name:a name:b "+EofKindName {
		t.Fatalf("unexpected tokens %q", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expecting one log entry, got %d", logs.Len())
	}
}

func TestStrict(t *testing.T) {
	l := MustNew(testRules, Strict())
	_, e := l.Tokenize(source.NewString("src", "a\n  @ b"))
	ee, f := e.(*err.Error)
	if !f || ee.Code != WrongCharError {
		t.Fatalf("expecting WrongCharError, got %v", e)
	}
	tail := fmt.Sprintf("line %d col %d", 2, 3)
	if !strings.HasSuffix(ee.Message, tail) || !strings.Contains(ee.Message, `"@"`) {
		t.Fatalf("unexpected message %q", ee.Message)
	}

	tokens, e := l.Tokenize(source.NewString("src", "a \t\n b"))
	if e != nil || len(tokens) != 3 {
		t.Fatalf("white space must be skipped in strict mode, got %v, %v", tokens, e)
	}
}

func TestWrongRules(t *testing.T) {
	samples := [][]Rule{
		{{nameKind, "name", `(a)`}},
		{{nameKind, "name", `[a`}},
	}
	for i, rules := range samples {
		_, e := New(rules)
		ee, f := e.(*err.Error)
		if !f || ee.Code != WrongRuleError {
			t.Fatalf("sample #%d: expecting WrongRuleError, got %v", i, e)
		}
	}
}
