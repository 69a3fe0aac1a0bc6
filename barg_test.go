package barg

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/internal/test"
	"github.com/ava12/barg/parser"
	"github.com/ava12/barg/transform"
	"github.com/ava12/barg/value"
)

const arithmetic = `
expr := struct { head: term, tail: list[0..] { struct { op: "[-+]", arg: term } } };
term := num | $builtin.take(struct { _0: "\(", e: expr, _1: "\)" }, e);
num := $builtin.int("[0-9]+");
`

func TestParseScenarios(t *testing.T) {
	samples := []struct {
		grammar, symbol, input string
		expected              []string
	}{
		{`digits := list[1..] { "[0-9]" };`, "digits", "123", []string{`["1", "2", "3"]/3`, `["1", "2"]/2`, `["1"]/1`}},
		{`digits := list[1..] { "[0-9]" };`, "digits", "abc", []string{}},
		{`pair := struct { a: "x", b: "y" };`, "pair", "xy", []string{`{a: "x", b: "y"}/2`}},
		{`choice := enum { first: "a", second: "b" };`, "choice", "b", []string{`second("b")/1`}},
		{`n := $builtin.int("[0-9]+");`, "n", "42", []string{"42/2"}},
	}

	for i, s := range samples {
		seqs, e := Parse(s.grammar, s.symbol, []string{s.input})
		require.NoError(t, e, "sample #%d", i)
		require.Len(t, seqs, 1)

		ms, e := ast.Collect(seqs[0], 0)
		require.NoError(t, e, "sample #%d", i)
		got := make([]string, len(ms))
		for j, m := range ms {
			got[j] = fmt.Sprintf("%s/%d", value.String(m.Value), m.Len)
		}
		if diff := cmp.Diff(s.expected, got); diff != "" {
			t.Errorf("sample #%d: unexpected matches (-want +got):\n%s", i, diff)
		}
	}
}

func TestDuplicateFields(t *testing.T) {
	_, e := Compile("dup", `s := struct { a: "x", a: "y" };`)
	test.ExpectErrorCode(t, ast.DuplicateFieldError, e)
	test.ExpectBadGrammar(t, e)
}

func TestGrammarParse(t *testing.T) {
	g, e := Compile("arithmetic", arithmetic)
	require.NoError(t, e)
	assert.Equal(t, []string{"expr", "term", "num"}, g.Symbols())
	require.NoError(t, g.Check("expr"))

	seqs, e := g.Parse("expr", "1+2", "(3-4)+5", "x")
	require.NoError(t, e)
	require.Len(t, seqs, 3)

	first := func(seq ast.Matches) string {
		ms, e := ast.Collect(seq, 1)
		require.NoError(t, e)
		if len(ms) == 0 {
			return ""
		}
		return value.String(ms[0].Value)
	}
	assert.Equal(t, `{head: 1, tail: [{op: "+", arg: 2}]}`, first(seqs[0]))
	assert.Equal(t, `{head: {head: 3, tail: [{op: "-", arg: 4}]}, tail: [{op: "+", arg: 5}]}`, first(seqs[1]))
	assert.Equal(t, "", first(seqs[2]))

	_, e = g.Parse("nothing", "1")
	test.ExpectErrorCode(t, ast.UndefinedRuleError, e)
}

func TestIdempotence(t *testing.T) {
	collect := func() []string {
		seqs, e := Parse(arithmetic, "expr", []string{"1+(2-3)+4"})
		require.NoError(t, e)
		ms, e := ast.Collect(seqs[0], 0)
		require.NoError(t, e)
		res := make([]string, len(ms))
		for i, m := range ms {
			res[i] = fmt.Sprintf("%s/%d", value.String(m.Value), m.Len)
		}
		return res
	}

	first := collect()
	assert.NotEmpty(t, first)
	assert.Empty(t, cmp.Diff(first, collect()))
}

func TestTakeRoundTrip(t *testing.T) {
	g, e := Compile("take", `
		inner := struct { a: "[a-z]+", b: "[0-9]+" };
		outer := $builtin.take(struct { x: inner, y: "!" }, x);
	`)
	require.NoError(t, e)
	m := g.NewModule()

	direct, found, e := m.First("inner", "ab12")
	require.NoError(t, e)
	require.True(t, found)
	taken, found, e := m.First("outer", "ab12!")
	require.NoError(t, e)
	require.True(t, found)
	assert.True(t, value.Equal(direct.Value, taken.Value))
}

func TestOptions(t *testing.T) {
	_, e := Compile("ext", `w := $ext.upper("[a-z]+");`)
	require.NoError(t, e)

	g, e := Compile("ext", `w := $ext.upper("[a-z]+");`, WithExtras())
	require.NoError(t, e)
	assert.Contains(t, g.Transforms(), "ext.upper")
	res, _, e := g.NewModule().First("w", "abc")
	require.NoError(t, e)
	assert.Equal(t, "ABC", res.Value)

	_, e = Compile("bad", `w := "x";`, WithTransforms(map[string]any{"x": 1}))
	test.ExpectErrorCode(t, transform.WrongNameError, e)

	_, e = Compile("lenient", `a := ; b := "x";`)
	test.ExpectErrorCode(t, parser.UnexpectedTokenError, e)
	g, e = Compile("lenient", `a := ; b := "x";`, Lenient())
	require.NoError(t, e)
	assert.Equal(t, []string{"b"}, g.Symbols())

	_, e = Compile("strict", `a := "x" ~;`, StrictLexer())
	require.Error(t, e)

	g, e = Compile("deep", `a := "x" a | "x";`, WithMaxDepth(3))
	require.NoError(t, e)
	_, e = ast.Collect(g.NewModule().Match("a", "xxxxx"), 0)
	test.ExpectErrorCode(t, ast.RecursionLimitError, e)

	g, e = Compile("long", `a := list[0..] { "x" };`, WithMaxDepth(3))
	require.NoError(t, e)
	res, found, e := g.NewModule().First("a", "xxxxx")
	require.NoError(t, e)
	require.True(t, found)
	assert.Equal(t, 5, res.Len)
}

func TestMatchAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	g, e := Compile("arithmetic", arithmetic)
	require.NoError(t, e)

	inputs := []string{"1", "1+2", "(1+2)-3", "1+", "((4))", "7-(8+9)-10"}
	res, e := MatchAll(context.Background(), g.NewModule(), "expr", inputs, 2)
	require.NoError(t, e)
	require.Len(t, res, len(inputs))

	var found []string
	for i, r := range res {
		assert.Equal(t, inputs[i], r.Input)
		if r.Found {
			assert.Equal(t, len(r.Input), r.Match.Len)
			found = append(found, r.Input)
		}
	}
	assert.Equal(t, []string{"1", "1+2", "(1+2)-3", "((4))", "7-(8+9)-10"}, found)
}

func TestMatchAllError(t *testing.T) {
	defer goleak.VerifyNone(t)

	g, e := Compile("bad", `a := "x" b; c := "y";`)
	require.NoError(t, e)
	inputs := []string{"y", "x", strings.Repeat("y", 10)}

	_, e = MatchAll(context.Background(), g.NewModule(), "a", inputs, 0)
	test.ExpectErrorCode(t, ast.UndefinedRuleError, e)
	assert.Contains(t, e.Error(), "input #2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, e = MatchAll(ctx, g.NewModule(), "c", inputs, 1)
	assert.ErrorIs(t, e, context.Canceled)
}
