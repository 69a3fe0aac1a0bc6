/*
Package barg is a backtracking grammar matcher.

Consists of subpackages:
  - cmd/barg: console utility to inspect grammars and match inputs;
  - parser: converts grammar description to AST;
  - ast: grammar nodes, matching context (Module), and the matcher;
  - value: values produced by matching (strings, lists, structs, enums);
  - transform: registry of transforms post-processing matched values and builtin transforms;
  - transform/extras: optional transforms (case mapping, decimals, UUIDs, etc.);
  - lexer: lexical analyzer;
  - source: grammar source with line/column mapping;
  - errors: error type and error codes.

Typical usage is:

1. Describe grammar: named rules made of regular expressions, structs, enums, lists, and transforms.

2. Compile grammar description, optionally adding custom transforms.

3. Match input strings starting from a chosen rule. Every input yields a lazy sequence of
all possible matches; take as many as needed.
*/
package barg

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/parser"
	"github.com/ava12/barg/transform"
	"github.com/ava12/barg/transform/extras"
)

type options struct {
	log          *zap.Logger
	transforms   []map[string]any
	extras       bool
	lenient      bool
	strictLexer  bool
	maxDepth     int
	matchTimeout time.Duration
}

// Option configures grammar compilation and matching.
type Option func(*options)

// WithLogger sets logger used by parser and modules.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTransforms adds custom transforms, see transform.Registry.Merge for accepted values.
// Custom transforms may replace builtin ones.
func WithTransforms(ext map[string]any) Option {
	return func(o *options) {
		o.transforms = append(o.transforms, ext)
	}
}

// WithExtras enables transforms of "ext" namespace.
func WithExtras() Option {
	return func(o *options) {
		o.extras = true
	}
}

// Lenient makes parser skip bad statements instead of failing.
func Lenient() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// StrictLexer makes parser fail on unrecognized characters.
func StrictLexer() Option {
	return func(o *options) {
		o.strictLexer = true
	}
}

// WithMaxDepth limits nesting of rule references while matching.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMatchTimeout limits the time a single pattern match may take.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.matchTimeout = timeout
	}
}

func (o *options) parserOptions() []parser.Option {
	res := []parser.Option{parser.WithLogger(o.log)}
	if o.lenient {
		res = append(res, parser.Lenient())
	}
	if o.strictLexer {
		res = append(res, parser.StrictLexer())
	}
	return res
}

func (o *options) registry() (*transform.Registry, error) {
	r := transform.Default()
	if o.extras {
		if e := extras.Register(r); e != nil {
			return nil, e
		}
	}
	for _, ext := range o.transforms {
		if e := r.Merge(ext); e != nil {
			return nil, e
		}
	}
	return r, nil
}

// Grammar is a compiled grammar description together with its transforms.
// Grammar is immutable and safe for concurrent use.
type Grammar struct {
	name       string
	top        *ast.Toplevel
	transforms *transform.Registry
	opts       options
}

// Compile parses grammar description and prepares transforms.
// Returns nil and *errors.Error on error.
func Compile(name, src string, opts ...Option) (*Grammar, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	top, e := parser.ParseString(name, src, o.parserOptions()...)
	if e != nil {
		return nil, e
	}

	r, e := o.registry()
	if e != nil {
		return nil, e
	}

	o.log.Debug("grammar compiled", zap.String("name", name), zap.Strings("rules", top.Names()))
	return &Grammar{name, top, r, o}, nil
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) Toplevel() *ast.Toplevel {
	return g.top
}

// Symbols returns rule names in declaration order.
func (g *Grammar) Symbols() []string {
	return g.top.Names()
}

// Transforms returns sorted names of available transforms.
func (g *Grammar) Transforms() []string {
	return g.transforms.Names()
}

// Check performs static checks of the grammar, see parser.Check.
func (g *Grammar) Check(roots ...string) error {
	return parser.Check(g.top, roots...)
}

// NewModule creates new matching context. Every module has its own caches.
func (g *Grammar) NewModule() *ast.Module {
	return ast.NewModule(g.top, g.transforms,
		ast.WithLogger(g.opts.log),
		ast.WithMaxDepth(g.opts.maxDepth),
		ast.WithMatchTimeout(g.opts.matchTimeout),
	)
}

// Parse returns lazy sequences of matches of symbol rule, one sequence per input.
// All sequences share one Module.
func (g *Grammar) Parse(symbol string, inputs ...string) ([]ast.Matches, error) {
	m := g.NewModule()
	if _, e := m.Definition(symbol); e != nil {
		return nil, e
	}

	res := make([]ast.Matches, len(inputs))
	for i, input := range inputs {
		res[i] = m.Match(symbol, input)
	}
	return res, nil
}

// Parse compiles grammar description and returns lazy sequences of matches of symbol rule,
// one sequence per input.
func Parse(src, symbol string, inputs []string, opts ...Option) ([]ast.Matches, error) {
	g, e := Compile("grammar", src, opts...)
	if e != nil {
		return nil, e
	}
	return g.Parse(symbol, inputs...)
}

// Result is the first match of an input consuming the whole input.
type Result struct {
	Input string
	Match ast.Match
	Found bool
}

// MatchAll looks for full matches of every input using up to parallel goroutines
// (no limit if parallel is not positive). The first matching error cancels the rest.
func MatchAll(ctx context.Context, m *ast.Module, symbol string, inputs []string, parallel int) ([]Result, error) {
	res := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, input := range inputs {
		g.Go(func() error {
			res[i].Input = input
			for match, e := range m.MatchContext(ctx, symbol, input) {
				if e != nil {
					return fmt.Errorf("input #%d: %w", i+1, e)
				}
				if match.Len == len(input) {
					res[i].Match = match
					res[i].Found = true
					break
				}
			}
			return nil
		})
	}

	if e := g.Wait(); e != nil {
		return nil, e
	}
	return res, nil
}
