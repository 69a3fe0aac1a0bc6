/*
barg is a console utility to inspect grammar descriptions and match inputs against them.
Usage is

	barg [flags] tokens [<grammar>]
	barg [flags] ast [-j] [<grammar>]
	barg [flags] check [-g <grammar>] [<rule> ...]
	barg [flags] match [-g <grammar>] [-s <rule>] [-a] [-n <limit>] [--full] [-f <format>] [<input> ...]
	barg [flags] transforms

Grammar file, start rule, output format and other defaults are taken from barg.yaml or barg.toml
found in current directory or its parents, flags override them.
match reads inputs from standard input, one per line, if none are given.
Output formats are text, json, yaml, and tree.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ava12/barg/internal/config"
)

var (
	ErrNoGrammar = errors.New("grammar file is not specified")
	ErrNoSymbol  = errors.New("grammar has no rules")
	ErrNoMatch   = errors.New("no match")
)

// CLI holds global flags and commands.
type CLI struct {
	Config      string        `help:"Configuration file, default is barg.yaml or barg.toml found in current or parent directory" short:"c" type:"path"`
	Verbose     bool          `help:"Log debug messages" short:"v"`
	NoColor     bool          `help:"Disable colored output"`
	Lenient     bool          `help:"Skip bad grammar statements instead of failing"`
	StrictLexer bool          `help:"Fail on unrecognized characters in grammar"`
	Extras      bool          `help:"Enable ext.* transforms" short:"x"`
	MaxDepth    int           `help:"Maximum nesting depth of rule references while matching"`
	Timeout     time.Duration `help:"Time limit for a single pattern match"`

	Tokens     TokensCmd     `cmd:"" help:"Print grammar tokens"`
	Ast        AstCmd        `cmd:"" help:"Print grammar rules in canonical form"`
	Check      CheckCmd      `cmd:"" help:"Check grammar for undefined, left recursive, and unreachable rules"`
	Match      MatchCmd      `cmd:"" help:"Match inputs against a grammar rule"`
	Transforms TransformsCmd `cmd:"" help:"List available transforms"`
}

// Context is passed to command Run methods.
type Context struct {
	context.Context
	Config     *config.Config
	ConfigPath string
	Log        *zap.Logger
	Stdin      io.Reader
	Stdout     io.Writer
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, e := cfg.Build()
	if e != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", e)
	}
	return log, nil
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		c, e := config.Load(path)
		return c, path, e
	}

	dir, e := os.Getwd()
	if e != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", e)
	}
	return config.FindAndLoad(dir)
}

// apply overrides config values with flags set on command line.
func (cli *CLI) apply(c *config.Config) {
	c.Lenient = c.Lenient || cli.Lenient
	c.StrictLexer = c.StrictLexer || cli.StrictLexer
	c.Extras = c.Extras || cli.Extras
	if cli.MaxDepth > 0 {
		c.MaxDepth = cli.MaxDepth
	}
	if cli.Timeout > 0 {
		c.MatchTimeout = cli.Timeout.String()
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	parser, e := kong.New(&cli,
		kong.Name("barg"),
		kong.Description("Inspect grammar descriptions and match inputs against them."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if e != nil {
		fmt.Fprintf(stderr, "Error: %v\n", e)
		return 2
	}

	kctx, e := parser.Parse(args)
	if e != nil {
		fmt.Fprintf(stderr, "Error: %v\n", e)
		return 2
	}

	if cli.NoColor {
		color.NoColor = true
	}

	log, e := newLogger(cli.Verbose)
	if e != nil {
		fmt.Fprintf(stderr, "Error: %v\n", e)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, path, e := loadConfig(cli.Config)
	if e != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", e)
		return 1
	}
	cli.apply(cfg)
	if path != "" {
		log.Debug("config loaded", zap.String("path", path))
	}

	appCtx := &Context{
		Context:    ctx,
		Config:     cfg,
		ConfigPath: path,
		Log:        log,
		Stdin:      stdin,
		Stdout:     stdout,
	}
	if e = kctx.Run(appCtx); e != nil {
		fmt.Fprintf(stderr, "Error: %v\n", e)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
