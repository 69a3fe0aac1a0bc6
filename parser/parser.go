// Package parser converts grammar description into AST.
//
// Grammar description is a sequence of statements, each is either
// "name := expression;" or an anonymous "expression;" named _0, _1, etc.
// Expressions are:
//
//	"pattern"                          regular expression anchored at current position
//	name                               reference to a rule
//	struct { name: expr, expr }        sequence with named (or numbered) fields
//	enum { name: expr, expr }          alternatives tagged with names (or numbers)
//	list[lazy 1..3] { expr }           repetition, mode and upper limit are optional
//	$ns.name(expr, ident, 123)         transform call
//	( expr )                           grouping
//	expr*  expr*?  expr+  expr+?  expr?  expr{3}   repetition shortcuts
//	expr expr                          implicit struct with fields _0, _1, ...
//	expr | expr                        $builtin.take(enum { _0: expr, _1: expr })
//
// "#" starts a comment running up to the end of line.
package parser

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/lexer"
	"github.com/ava12/barg/source"
	"github.com/ava12/barg/transform"
)

const (
	structTok lexer.Kind = iota
	enumTok
	listTok
	nameTok
	stringTok
	intTok
	defineTok
	colonTok
	semicolonTok
	commaTok
	pipeTok
	lParenTok
	rParenTok
	lCurlyTok
	rCurlyTok
	lSquareTok
	rSquareTok
	rangeTok
	dotTok
	lazyStarTok
	starTok
	lazyPlusTok
	plusTok
	optionalTok
	dollarTok
)

// Rules are tried in order, keywords go before names.
var grammarRules = []lexer.Rule{
	{Kind: structTok, Name: "struct", Pattern: `struct\b`},
	{Kind: enumTok, Name: "enum", Pattern: `enum\b`},
	{Kind: listTok, Name: "list", Pattern: `list\b`},
	{Kind: nameTok, Name: "name", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Kind: stringTok, Name: "string", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Kind: intTok, Name: "int", Pattern: `[0-9]+`},
	{Kind: defineTok, Name: ":=", Pattern: `:=`},
	{Kind: colonTok, Name: ":", Pattern: `:`},
	{Kind: semicolonTok, Name: ";", Pattern: `;`},
	{Kind: commaTok, Name: ",", Pattern: `,`},
	{Kind: pipeTok, Name: "|", Pattern: `\|`},
	{Kind: lParenTok, Name: "(", Pattern: `\(`},
	{Kind: rParenTok, Name: ")", Pattern: `\)`},
	{Kind: lCurlyTok, Name: "{", Pattern: `\{`},
	{Kind: rCurlyTok, Name: "}", Pattern: `\}`},
	{Kind: lSquareTok, Name: "[", Pattern: `\[`},
	{Kind: rSquareTok, Name: "]", Pattern: `\]`},
	{Kind: rangeTok, Name: "..", Pattern: `\.\.`},
	{Kind: dotTok, Name: ".", Pattern: `\.`},
	{Kind: lazyStarTok, Name: "*?", Pattern: `\*\?`},
	{Kind: starTok, Name: "*", Pattern: `\*`},
	{Kind: lazyPlusTok, Name: "+?", Pattern: `\+\?`},
	{Kind: plusTok, Name: "+", Pattern: `\+`},
	{Kind: optionalTok, Name: "?", Pattern: `\?`},
	{Kind: dollarTok, Name: "$", Pattern: `\$`},
}

// Rules returns token rules of grammar description language.
func Rules() []lexer.Rule {
	return append([]lexer.Rule(nil), grammarRules...)
}

// Option configures parser.
type Option func(*parseContext)

// Lenient makes parser skip bad statements (logging them) instead of failing.
// Parsing resumes after the next ";".
func Lenient() Option {
	return func(c *parseContext) {
		c.lenient = true
	}
}

// StrictLexer makes parser fail on characters that cannot start any token.
func StrictLexer() Option {
	return func(c *parseContext) {
		c.strictLexer = true
	}
}

// WithLogger sets logger for skipped statements and characters.
func WithLogger(log *zap.Logger) Option {
	return func(c *parseContext) {
		if log != nil {
			c.log = log
		}
	}
}

// Tokenize splits grammar description into tokens, the last token is EoF.
func Tokenize(s *source.Source, opts ...Option) ([]lexer.Token, error) {
	return newParseContext(opts).tokenize(s)
}

// ParseString parses grammar description and returns its AST on success.
// Returns nil and *errors.Error on error.
func ParseString(name, content string, opts ...Option) (*ast.Toplevel, error) {
	return Parse(source.NewString(name, content), opts...)
}

// ParseBytes parses grammar description and returns its AST on success.
// Returns nil and *errors.Error on error.
func ParseBytes(name string, content []byte, opts ...Option) (*ast.Toplevel, error) {
	return Parse(source.New(name, content), opts...)
}

// Parse parses grammar description and returns its AST on success.
// Returns nil and *errors.Error on error.
func Parse(s *source.Source, opts ...Option) (*ast.Toplevel, error) {
	c := newParseContext(opts)
	tokens, e := c.tokenize(s)
	if e != nil {
		return nil, e
	}

	c.tokens = tokens
	return c.parse()
}

type statement struct {
	name string
	expr ast.Node
}

type parseContext struct {
	tokens      []lexer.Token
	pos         int
	lenient     bool
	strictLexer bool
	log         *zap.Logger
}

func newParseContext(opts []Option) *parseContext {
	c := &parseContext{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *parseContext) tokenize(s *source.Source) ([]lexer.Token, error) {
	lexOpts := []lexer.Option{lexer.WithLogger(c.log)}
	if c.strictLexer {
		lexOpts = append(lexOpts, lexer.Strict())
	}
	return lexer.MustNew(grammarRules, lexOpts...).Tokenize(s)
}

func (c *parseContext) parse() (*ast.Toplevel, error) {
	var statements []statement
	defined := make(map[string]bool)

	for !c.peek().IsEof() {
		start := c.pos
		st, e := c.parseStatement(defined)
		if e != nil {
			if !c.lenient {
				return nil, e
			}

			c.log.Warn("skipping statement", zap.Error(e))
			c.resync(start)
			continue
		}

		if st.name != "" {
			defined[st.name] = true
		}
		statements = append(statements, st)
	}

	assignments := make([]*ast.Assignment, len(statements))
	names := autoNames(defined)
	for i, st := range statements {
		if st.name == "" {
			st.name = names()
		}
		assignments[i] = ast.NewAssignment(st.name, st.expr)
	}
	return ast.NewToplevel(assignments), nil
}

// autoNames returns generator of names _0, _1, etc. skipping used ones.
func autoNames(used map[string]bool) func() string {
	i := 0
	return func() string {
		for {
			name := "_" + strconv.Itoa(i)
			i++
			if !used[name] {
				return name
			}
		}
	}
}

// resync skips tokens up to and including the next ";" unless the failed statement consumed one.
func (c *parseContext) resync(start int) {
	if c.pos > start && c.tokens[c.pos-1].Kind() == semicolonTok {
		return
	}

	for {
		t := c.peek()
		if t.IsEof() {
			return
		}
		c.pos++
		if t.Kind() == semicolonTok {
			return
		}
	}
}

func (c *parseContext) peek() lexer.Token {
	return c.peekAt(0)
}

func (c *parseContext) peekAt(offset int) lexer.Token {
	i := c.pos + offset
	if i >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[i]
}

func (c *parseContext) next() lexer.Token {
	t := c.peek()
	if !t.IsEof() {
		c.pos++
	}
	return t
}

// accept fetches the next token if it has one of given kinds.
func (c *parseContext) accept(kinds ...lexer.Kind) (lexer.Token, bool) {
	t := c.peek()
	for _, k := range kinds {
		if t.Kind() == k {
			c.pos++
			return t, true
		}
	}
	return t, false
}

// fetch returns the next token, it must have one of given kinds.
func (c *parseContext) fetch(expected string, kinds ...lexer.Kind) (lexer.Token, error) {
	t, found := c.accept(kinds...)
	if found {
		return t, nil
	}
	if t.IsEof() {
		return t, eofError(t, expected)
	}
	return t, unexpectedTokenError(t, expected)
}

func (c *parseContext) skipOne(kind lexer.Kind) error {
	_, e := c.fetch(strconv.Quote(grammarRules[kind].Name), kind)
	return e
}

func (c *parseContext) parseStatement(defined map[string]bool) (st statement, e error) {
	if c.peek().Kind() == nameTok && c.peekAt(1).Kind() == defineTok {
		t := c.next()
		c.next()
		if defined[t.Text()] {
			return st, duplicateRuleError(t)
		}
		st.name = t.Text()
	}

	st.expr, e = c.parseExpr()
	if e == nil {
		e = c.skipOne(semicolonTok)
	}
	return st, e
}

func (c *parseContext) parseExpr() (ast.Node, error) {
	first := c.peek()
	var alternatives []ast.Node
	for {
		seq, e := c.parseSequence()
		if e != nil {
			return nil, e
		}

		alternatives = append(alternatives, seq)
		if _, found := c.accept(pipeTok); !found {
			break
		}
	}

	if len(alternatives) == 1 {
		return alternatives[0], nil
	}

	en, e := ast.NewEnum(numbered(alternatives))
	if e != nil {
		return nil, positioned(first, e)
	}
	return ast.NewTransform(transform.Take, en)
}

func numbered(nodes []ast.Node) []ast.Field {
	fields := make([]ast.Field, len(nodes))
	for i, n := range nodes {
		fields[i] = ast.Field{Name: "_" + strconv.Itoa(i), Expr: n}
	}
	return fields
}

const atomStart = "expression"

func startsAtom(t lexer.Token) bool {
	switch t.Kind() {
	case stringTok, nameTok, structTok, enumTok, listTok, dollarTok, lParenTok:
		return true
	default:
		return false
	}
}

func (c *parseContext) parseSequence() (ast.Node, error) {
	first := c.peek()
	var items []ast.Node
	for startsAtom(c.peek()) {
		item, e := c.parseQuantified()
		if e != nil {
			return nil, e
		}
		items = append(items, item)
	}

	switch len(items) {
	case 0:
		if first.IsEof() {
			return nil, eofError(first, atomStart)
		}
		return nil, unexpectedTokenError(first, atomStart)
	case 1:
		return items[0], nil
	}

	s, e := ast.NewStruct(numbered(items))
	if e != nil {
		return nil, positioned(first, e)
	}
	return s, nil
}

func (c *parseContext) parseQuantified() (ast.Node, error) {
	n, e := c.parseAtom()
	for e == nil {
		t, found := c.accept(starTok, lazyStarTok, plusTok, lazyPlusTok, optionalTok, lCurlyTok)
		if !found {
			break
		}

		switch t.Kind() {
		case starTok:
			n, e = ast.NewList(n, 0, ast.Unbounded, ast.Greedy)
		case lazyStarTok:
			n, e = ast.NewList(n, 0, ast.Unbounded, ast.Lazy)
		case plusTok:
			n, e = ast.NewList(n, 1, ast.Unbounded, ast.Greedy)
		case lazyPlusTok:
			n, e = ast.NewList(n, 1, ast.Unbounded, ast.Lazy)
		case optionalTok:
			n, e = ast.NewList(n, 0, 1, ast.Greedy)
		case lCurlyTok:
			var count int
			count, e = c.parseInt()
			if e == nil {
				e = c.skipOne(rCurlyTok)
			}
			if e == nil {
				n, e = ast.NewList(n, count, count, ast.Greedy)
			}
		}
		if e != nil {
			e = positioned(t, e)
		}
	}
	return n, e
}

func (c *parseContext) parseInt() (int, error) {
	t, e := c.fetch("integer", intTok)
	if e != nil {
		return 0, e
	}

	res, e := strconv.Atoi(t.Text())
	if e != nil {
		return 0, wrongNumberError(t)
	}
	return res, nil
}

func (c *parseContext) parseAtom() (ast.Node, error) {
	t := c.next()
	switch t.Kind() {
	case stringTok:
		pattern := unquote(t.Text())
		if _, e := ast.CompilePattern(pattern); e != nil {
			return nil, positioned(t, e)
		}
		return ast.NewString(pattern), nil

	case nameTok:
		return ast.NewVariable(t.Text()), nil

	case structTok:
		fields, e := c.parseBody()
		if e != nil {
			return nil, e
		}
		s, e := ast.NewStruct(fields)
		if e != nil {
			return nil, positioned(t, e)
		}
		return s, nil

	case enumTok:
		variants, e := c.parseBody()
		if e != nil {
			return nil, e
		}
		en, e := ast.NewEnum(variants)
		if e != nil {
			return nil, positioned(t, e)
		}
		return en, nil

	case listTok:
		return c.parseList(t)

	case dollarTok:
		return c.parseTransform()

	case lParenTok:
		n, e := c.parseExpr()
		if e == nil {
			e = c.skipOne(rParenTok)
		}
		return n, e

	default:
		if t.IsEof() {
			return nil, eofError(t, atomStart)
		}
		return nil, unexpectedTokenError(t, atomStart)
	}
}

// unquote strips quotes and unescapes \" sequences, other escapes belong to the pattern.
func unquote(text string) string {
	text = text[1 : len(text)-1]
	if !strings.Contains(text, `\"`) {
		return text
	}

	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			if text[i+1] != '"' {
				sb.WriteByte('\\')
			}
			i++
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}

type bodyEntry struct {
	name string
	expr ast.Node
}

// parseBody parses "{ name: expr, expr, ... }", anonymous entries get numbered names.
func (c *parseContext) parseBody() ([]ast.Field, error) {
	if e := c.skipOne(lCurlyTok); e != nil {
		return nil, e
	}

	var entries []bodyEntry
	used := make(map[string]bool)
	for {
		if _, found := c.accept(rCurlyTok); found {
			break
		}

		var entry bodyEntry
		if c.peek().Kind() == nameTok && c.peekAt(1).Kind() == colonTok {
			entry.name = c.next().Text()
			c.next()
			used[entry.name] = true
		}

		var e error
		entry.expr, e = c.parseExpr()
		if e != nil {
			return nil, e
		}
		entries = append(entries, entry)

		t, e := c.fetch(`"," or "}"`, commaTok, rCurlyTok)
		if e != nil {
			return nil, e
		}
		if t.Kind() == rCurlyTok {
			break
		}
	}

	names := autoNames(used)
	fields := make([]ast.Field, len(entries))
	for i, entry := range entries {
		if entry.name == "" {
			entry.name = names()
		}
		fields[i] = ast.Field{Name: entry.name, Expr: entry.expr}
	}
	return fields, nil
}

// parseList parses "[mode start..end] { expr }" after the list keyword.
func (c *parseContext) parseList(keyword lexer.Token) (ast.Node, error) {
	if e := c.skipOne(lSquareTok); e != nil {
		return nil, e
	}

	mode := ast.Greedy
	if t, found := c.accept(nameTok); found {
		m, valid := ast.ParseMode(t.Text())
		if !valid {
			return nil, unexpectedTokenError(t, `"greedy" or "lazy"`)
		}
		mode = m
	}

	min, e := c.parseInt()
	if e != nil {
		return nil, e
	}
	if e = c.skipOne(rangeTok); e != nil {
		return nil, e
	}

	max := ast.Unbounded
	if c.peek().Kind() == intTok {
		max, e = c.parseInt()
		if e != nil {
			return nil, e
		}
	}
	if e = c.skipOne(rSquareTok); e != nil {
		return nil, e
	}

	if e = c.skipOne(lCurlyTok); e != nil {
		return nil, e
	}
	elem, e := c.parseExpr()
	if e != nil {
		return nil, e
	}
	if e = c.skipOne(rCurlyTok); e != nil {
		return nil, e
	}

	n, e := ast.NewList(elem, min, max, mode)
	if e != nil {
		return nil, positioned(keyword, e)
	}
	return n, nil
}

// parseTransform parses "ns.name(expr, arg, ...)" after the "$" sign.
func (c *parseContext) parseTransform() (ast.Node, error) {
	start, e := c.fetch("transform name", nameTok)
	if e != nil {
		return nil, e
	}

	path := []string{start.Text()}
	for {
		if _, found := c.accept(dotTok); !found {
			break
		}
		t, e := c.fetch("transform name", nameTok)
		if e != nil {
			return nil, e
		}
		path = append(path, t.Text())
	}

	if e = c.skipOne(lParenTok); e != nil {
		return nil, e
	}
	expr, e := c.parseExpr()
	if e != nil {
		return nil, e
	}

	var args []any
	for {
		t, e := c.fetch(`"," or ")"`, commaTok, rParenTok)
		if e != nil {
			return nil, e
		}
		if t.Kind() == rParenTok {
			break
		}

		t, e = c.fetch("identifier or integer", nameTok, intTok)
		if e != nil {
			return nil, e
		}
		if t.Kind() == nameTok {
			args = append(args, t.Text())
		} else {
			n, e := strconv.Atoi(t.Text())
			if e != nil {
				return nil, wrongNumberError(t)
			}
			args = append(args, n)
		}
	}

	return ast.NewTransform(strings.Join(path, "."), expr, args...)
}
