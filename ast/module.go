package ast

import (
	"context"
	"errors"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/transform"
	"github.com/ava12/barg/value"
)

// DefaultMaxDepth limits nesting of rule references while matching.
const DefaultMaxDepth = 100000

// Match is a single match result: produced value and the number of consumed input bytes.
type Match struct {
	Value value.Value
	Len   int
}

// Matches is a lazy sequence of match results.
// A non-nil error is the last item of the sequence.
type Matches = iter.Seq2[Match, error]

// Option configures Module.
type Option func(*Module)

// WithLogger sets module logger, nil means no logging.
func WithLogger(log *zap.Logger) Option {
	return func(m *Module) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMaxDepth sets nesting limit, non-positive value means DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(m *Module) {
		if depth > 0 {
			m.maxDepth = depth
		}
	}
}

// WithMatchTimeout limits the time a single pattern match may take.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(m *Module) {
		m.timeout = timeout
	}
}

// Module is a matching context: grammar definitions, transforms, and caches of
// compiled patterns and generated result types.
// Module is safe for concurrent use.
type Module struct {
	top        *Toplevel
	transforms *transform.Registry
	log        *zap.Logger
	maxDepth   int
	timeout    time.Duration

	mu      sync.Mutex
	regexps map[string]*regexp2.Regexp
	structs map[string]*value.StructType
	enums   map[string]*value.EnumType
}

// NewModule creates matching context for grammar.
// Module uses a private copy of transforms, nil means transform.Default().
func NewModule(top *Toplevel, transforms *transform.Registry, opts ...Option) *Module {
	if transforms == nil {
		transforms = transform.Default()
	} else {
		transforms = transforms.Clone()
	}

	m := &Module{
		top:        top,
		transforms: transforms,
		log:        zap.NewNop(),
		maxDepth:   DefaultMaxDepth,
		regexps:    make(map[string]*regexp2.Regexp),
		structs:    make(map[string]*value.StructType),
		enums:      make(map[string]*value.EnumType),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) Toplevel() *Toplevel {
	return m.top
}

func (m *Module) Logger() *zap.Logger {
	return m.log
}

// Lookup resolves transform name.
func (m *Module) Lookup(name string) (transform.Func, error) {
	return m.transforms.Lookup(name)
}

// Transforms returns sorted names of available transforms.
func (m *Module) Transforms() []string {
	return m.transforms.Names()
}

// Definition returns the expression of a top-level rule.
func (m *Module) Definition(name string) (Node, error) {
	n, has := m.top.Lookup(name)
	if !has {
		return nil, err.Format(UndefinedRuleError, "undefined rule %q", name)
	}
	return n, nil
}

// Symbols returns sorted rule names.
func (m *Module) Symbols() []string {
	names := m.top.Names()
	sort.Strings(names)
	return names
}

// Regexp returns compiled pattern anchored at the start of input.
func (m *Module) Regexp(pattern string) (*regexp2.Regexp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	re := m.regexps[pattern]
	if re != nil {
		return re, nil
	}

	re, e := CompilePattern(pattern)
	if e != nil {
		return nil, e
	}
	if m.timeout > 0 {
		re.MatchTimeout = m.timeout
	}
	m.regexps[pattern] = re
	m.log.Debug("pattern compiled", zap.String("pattern", pattern))
	return re, nil
}

// CompilePattern compiles grammar string pattern anchored at the start of input.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	re, e := regexp2.Compile(`\A(?:`+pattern+`)`, regexp2.None)
	if e != nil {
		return nil, err.Format(WrongRegexpError, "incorrect pattern %s: %s", QuotePattern(pattern), e.Error())
	}
	return re, nil
}

// StructType returns result type of struct node, structurally equal nodes share the type.
func (m *Module) StructType(n *Struct) *value.StructType {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.structs[n.key]
	if t == nil {
		t = value.NewStructType(n.Names())
		m.structs[n.key] = t
		m.log.Debug("struct type created", zap.String("type", t.String()))
	}
	return t
}

// EnumType returns result type of enum node, structurally equal nodes share the type.
func (m *Module) EnumType(n *Enum) *value.EnumType {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.enums[n.key]
	if t == nil {
		t = value.NewEnumType(n.Tags())
		m.enums[n.key] = t
		m.log.Debug("enum type created", zap.String("type", t.String()))
	}
	return t
}

// Match returns all matches of named rule at the start of input.
func (m *Module) Match(symbol, input string) Matches {
	return m.MatchContext(context.Background(), symbol, input)
}

// MatchContext is Match that stops with ctx.Err() when ctx is done.
func (m *Module) MatchContext(ctx context.Context, symbol, input string) Matches {
	return func(yield func(Match, error) bool) {
		n, e := m.Definition(symbol)
		if e != nil {
			yield(Match{}, e)
			return
		}

		m.matchNode(ctx, n, input, yield)
	}
}

// MatchNode returns all matches of arbitrary node at the start of input.
// Variables inside n are resolved against module definitions.
func (m *Module) MatchNode(ctx context.Context, n Node, input string) Matches {
	return func(yield func(Match, error) bool) {
		m.matchNode(ctx, n, input, yield)
	}
}

func (m *Module) matchNode(ctx context.Context, n Node, input string, yield func(Match, error) bool) {
	if e := ctx.Err(); e != nil {
		yield(Match{}, e)
		return
	}

	st := newState(m, ctx, input)
	offsets := byteOffsets(input)
	e := n.match(st, 0, func(v value.Value, end int) error {
		if !yield(Match{v, offsets[end]}, nil) {
			return errStop
		}
		return nil
	})
	if e != nil && !errors.Is(e, errStop) {
		yield(Match{}, e)
	}
}

// First returns the first match of named rule, found is false if there are no matches.
func (m *Module) First(symbol, input string) (Match, bool, error) {
	for res, e := range m.Match(symbol, input) {
		return res, e == nil, e
	}
	return Match{}, false, nil
}

// FirstFull returns the first match of named rule consuming whole input.
func (m *Module) FirstFull(symbol, input string) (Match, bool, error) {
	for res, e := range m.Match(symbol, input) {
		if e != nil {
			return Match{}, false, e
		}
		if res.Len == len(input) {
			return res, true, nil
		}
	}
	return Match{}, false, nil
}

// Collect gathers up to limit matches, non-positive limit means all matches.
func Collect(seq Matches, limit int) ([]Match, error) {
	var res []Match
	for m, e := range seq {
		if e != nil {
			return res, e
		}
		res = append(res, m)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, nil
}
