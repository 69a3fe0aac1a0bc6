package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/ava12/barg"
	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/internal/config"
	"github.com/ava12/barg/parser"
	"github.com/ava12/barg/source"
	"github.com/ava12/barg/transform"
	"github.com/ava12/barg/transform/extras"
)

var (
	posFmt   = color.New(color.FgHiBlack).SprintfFunc()
	kindFmt  = color.New(color.FgCyan).SprintFunc()
	nameFmt  = color.New(color.FgBlue, color.Bold).SprintFunc()
	okFmt    = color.New(color.FgGreen).SprintFunc()
	errorFmt = color.New(color.FgRed).SprintFunc()
)

func (ctx *Context) grammarFile(name string) (string, error) {
	if name == "" {
		name = ctx.Config.GrammarPath(ctx.ConfigPath)
	}
	if name == "" {
		return "", ErrNoGrammar
	}
	return name, nil
}

func (ctx *Context) readGrammar(name string) (string, []byte, error) {
	name, e := ctx.grammarFile(name)
	if e != nil {
		return "", nil, e
	}

	src, e := os.ReadFile(name)
	if e != nil {
		return "", nil, fmt.Errorf("failed to read grammar: %w", e)
	}
	return name, src, nil
}

func (ctx *Context) options() ([]barg.Option, error) {
	timeout, e := ctx.Config.Timeout()
	if e != nil {
		return nil, e
	}

	opts := []barg.Option{
		barg.WithLogger(ctx.Log),
		barg.WithMaxDepth(ctx.Config.MaxDepth),
		barg.WithMatchTimeout(timeout),
	}
	if ctx.Config.Lenient {
		opts = append(opts, barg.Lenient())
	}
	if ctx.Config.StrictLexer {
		opts = append(opts, barg.StrictLexer())
	}
	if ctx.Config.Extras {
		opts = append(opts, barg.WithExtras())
	}
	return opts, nil
}

func (ctx *Context) compile(name string) (*barg.Grammar, error) {
	name, src, e := ctx.readGrammar(name)
	if e != nil {
		return nil, e
	}

	opts, e := ctx.options()
	if e != nil {
		return nil, e
	}
	return barg.Compile(name, string(src), opts...)
}

type TokensCmd struct {
	Grammar string `arg:"" optional:"" help:"Grammar file"`
}

func (cmd *TokensCmd) Run(ctx *Context) error {
	name, src, e := ctx.readGrammar(cmd.Grammar)
	if e != nil {
		return e
	}

	opts := []parser.Option{parser.WithLogger(ctx.Log)}
	if ctx.Config.StrictLexer {
		opts = append(opts, parser.StrictLexer())
	}
	tokens, e := parser.Tokenize(source.New(name, src), opts...)
	if e != nil {
		return e
	}

	for _, t := range tokens {
		fmt.Fprintf(ctx.Stdout, "%s %s %s\n", posFmt("%d:%d", t.Line(), t.Col()), kindFmt(t.KindName()), t.Text())
	}
	return nil
}

type AstCmd struct {
	Json    bool   `short:"j" help:"Output JSON instead of text"`
	Grammar string `arg:"" optional:"" help:"Grammar file"`
}

type jsonRule struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

func (cmd *AstCmd) Run(ctx *Context) error {
	g, e := ctx.compile(cmd.Grammar)
	if e != nil {
		return e
	}

	if !cmd.Json {
		for _, a := range g.Toplevel().Assignments() {
			fmt.Fprintf(ctx.Stdout, "%s := %s;\n", nameFmt(a.Name()), a.Expr().String())
		}
		return nil
	}

	assignments := g.Toplevel().Assignments()
	rules := make([]jsonRule, len(assignments))
	for i, a := range assignments {
		rules[i] = jsonRule{a.Name(), a.Expr().String()}
	}
	content, e := json.MarshalIndent(rules, "", "\t")
	if e != nil {
		return e
	}
	_, e = fmt.Fprintln(ctx.Stdout, string(content))
	return e
}

type CheckCmd struct {
	Grammar string   `short:"g" help:"Grammar file"`
	Roots   []string `arg:"" optional:"" help:"Rules used as start symbols, default is the configured symbol"`
}

func (cmd *CheckCmd) Run(ctx *Context) error {
	g, e := ctx.compile(cmd.Grammar)
	if e != nil {
		return e
	}

	roots := cmd.Roots
	if len(roots) == 0 && ctx.Config.Symbol != "" {
		roots = []string{ctx.Config.Symbol}
	}
	if e = g.Check(roots...); e != nil {
		fmt.Fprintln(ctx.Stdout, errorFmt("FAIL"), g.Name())
		return e
	}

	fmt.Fprintln(ctx.Stdout, okFmt("ok"), g.Name())
	return nil
}

type MatchCmd struct {
	Grammar  string   `short:"g" help:"Grammar file"`
	Symbol   string   `short:"s" help:"Start rule, default is the configured symbol or the first rule"`
	All      bool     `short:"a" help:"Output all matches, not only the first one"`
	Limit    int      `short:"n" help:"Maximum number of matches per input, 0 means no limit"`
	Full     bool     `help:"Only output matches consuming the whole input"`
	Format   string   `short:"f" help:"Output format: text, json, yaml, or tree"`
	Parallel int      `short:"p" help:"Number of inputs matched concurrently, 0 means no limit"`
	Inputs   []string `arg:"" optional:"" help:"Inputs to match, default is standard input lines"`
}

func (cmd *MatchCmd) symbol(g *barg.Grammar, cfg *config.Config) (string, error) {
	if cmd.Symbol != "" {
		return cmd.Symbol, nil
	}
	if cfg.Symbol != "" {
		return cfg.Symbol, nil
	}
	symbols := g.Symbols()
	if len(symbols) == 0 {
		return "", ErrNoSymbol
	}
	return symbols[0], nil
}

func (cmd *MatchCmd) format(cfg *config.Config) (string, error) {
	f := cmd.Format
	if f == "" {
		f = cfg.Format
	}
	if f == "" {
		return "text", nil
	}
	if !slices.Contains(config.Formats, f) {
		return "", fmt.Errorf("%w %q", config.ErrUnknownFormat, f)
	}
	return f, nil
}

func (cmd *MatchCmd) limit() int {
	switch {
	case !cmd.All:
		return 1
	case cmd.Limit > 0:
		return cmd.Limit
	default:
		return 0
	}
}

func readLines(ctx *Context) ([]string, error) {
	var res []string
	sc := bufio.NewScanner(ctx.Stdin)
	for sc.Scan() {
		res = append(res, sc.Text())
	}
	if e := sc.Err(); e != nil {
		return nil, fmt.Errorf("failed to read input: %w", e)
	}
	return res, nil
}

func (cmd *MatchCmd) Run(ctx *Context) error {
	g, e := ctx.compile(cmd.Grammar)
	if e != nil {
		return e
	}
	symbol, e := cmd.symbol(g, ctx.Config)
	if e != nil {
		return e
	}
	format, e := cmd.format(ctx.Config)
	if e != nil {
		return e
	}

	inputs := cmd.Inputs
	if len(inputs) == 0 {
		inputs, e = readLines(ctx)
		if e != nil {
			return e
		}
	}

	m := g.NewModule()
	if _, e = m.Definition(symbol); e != nil {
		return e
	}
	ctx.Log.Debug("matching", zap.String("symbol", symbol), zap.Int("inputs", len(inputs)))

	var results []inputResult
	if cmd.Full && !cmd.All {
		results, e = cmd.matchFirstFull(ctx, m, symbol, inputs)
	} else {
		results, e = cmd.matchEach(ctx, m, symbol, inputs)
	}
	if e != nil {
		return e
	}

	if e = writeResults(ctx.Stdout, format, results); e != nil {
		return e
	}

	missing := 0
	for _, r := range results {
		if len(r.Matches) == 0 {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w for %d of %d inputs", ErrNoMatch, missing, len(inputs))
	}
	return nil
}

func (cmd *MatchCmd) matchFirstFull(ctx *Context, m *ast.Module, symbol string, inputs []string) ([]inputResult, error) {
	parallel := cmd.Parallel
	if parallel == 0 {
		parallel = ctx.Config.Parallel
	}

	found, e := barg.MatchAll(ctx, m, symbol, inputs, parallel)
	if e != nil {
		return nil, e
	}

	res := make([]inputResult, len(found))
	for i, r := range found {
		res[i].Input = r.Input
		if r.Found {
			res[i].Matches = []ast.Match{r.Match}
		}
	}
	return res, nil
}

func (cmd *MatchCmd) matchEach(ctx *Context, m *ast.Module, symbol string, inputs []string) ([]inputResult, error) {
	limit := cmd.limit()
	res := make([]inputResult, len(inputs))
	for i, input := range inputs {
		res[i].Input = input
		for match, e := range m.MatchContext(ctx, symbol, input) {
			if e != nil {
				return nil, fmt.Errorf("input #%d: %w", i+1, e)
			}
			if cmd.Full && match.Len != len(input) {
				continue
			}

			res[i].Matches = append(res[i].Matches, match)
			if limit > 0 && len(res[i].Matches) >= limit {
				break
			}
		}
	}
	return res, nil
}

type TransformsCmd struct{}

func (cmd *TransformsCmd) Run(ctx *Context) error {
	r := transform.Default()
	if ctx.Config.Extras {
		if e := extras.Register(r); e != nil {
			return e
		}
	}

	for _, name := range r.Names() {
		fmt.Fprintln(ctx.Stdout, name)
	}
	return nil
}
