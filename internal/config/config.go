// Package config loads barg command line defaults from barg.yaml or barg.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// FileNames lists recognized config file names in lookup order.
var FileNames = []string{"barg.yaml", "barg.yml", "barg.toml"}

// Formats lists output formats known to the command line tool.
var Formats = []string{"text", "json", "yaml", "tree"}

var (
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrNegativeDepth   = errors.New("max_depth must not be negative")
	ErrNegativeWorkers = errors.New("parallel must not be negative")
	ErrUnknownKeys     = errors.New("unknown configuration keys")
)

// Config holds defaults for command line flags.
type Config struct {
	Grammar      string `yaml:"grammar" toml:"grammar"`
	Symbol       string `yaml:"symbol" toml:"symbol"`
	Format       string `yaml:"format" toml:"format"`
	Lenient      bool   `yaml:"lenient" toml:"lenient"`
	StrictLexer  bool   `yaml:"strict_lexer" toml:"strict_lexer"`
	MaxDepth     int    `yaml:"max_depth" toml:"max_depth"`
	MatchTimeout string `yaml:"match_timeout" toml:"match_timeout"`
	Parallel     int    `yaml:"parallel" toml:"parallel"`
	Extras       bool   `yaml:"extras" toml:"extras"`
}

// Default returns configuration used when no config file is found.
func Default() *Config {
	return &Config{Format: "text"}
}

// FindAndLoad looks for a config file starting from startDir and going up.
// Returns default config and empty path if nothing is found.
func FindAndLoad(startDir string) (*Config, string, error) {
	path := FindFile(startDir)
	if path == "" {
		return Default(), "", nil
	}

	c, e := Load(path)
	if e != nil {
		return nil, "", e
	}
	return c, path, nil
}

// FindFile returns the path of the first config file found in startDir or its parents.
func FindFile(startDir string) string {
	dir, e := filepath.Abs(startDir)
	if e != nil {
		dir = startDir
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, e := os.Stat(path); e == nil && !info.IsDir() {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads config file, its format is chosen by extension.
// A .env file next to the config file is loaded first so its variables may be used in values.
func Load(path string) (*Config, error) {
	if e := LoadEnv(filepath.Dir(path)); e != nil {
		return nil, e
	}

	data, e := os.ReadFile(path)
	if e != nil {
		return nil, fmt.Errorf("failed to read config: %w", e)
	}

	c := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		e = decodeToml(data, c)
	default:
		e = yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField())
	}
	if e != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, e)
	}

	c.expandEnv()
	if e = c.Validate(); e != nil {
		return nil, fmt.Errorf("%s: %w", path, e)
	}
	return c, nil
}

func decodeToml(data []byte, c *Config) error {
	md, e := toml.Decode(string(data), c)
	if e != nil {
		return e
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return nil
}

// LoadEnv loads dir/.env if it exists. Variables already set are not overridden.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, e := os.Stat(path); e != nil {
		return nil
	}

	if e := godotenv.Load(path); e != nil {
		return fmt.Errorf("failed to load .env file: %w", e)
	}
	return nil
}

func (c *Config) expandEnv() {
	for _, s := range []*string{&c.Grammar, &c.Symbol, &c.Format, &c.MatchTimeout} {
		*s = os.ExpandEnv(*s)
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Format == "" {
		c.Format = "text"
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w %q", ErrUnknownFormat, c.Format)
	}
	if c.MaxDepth < 0 {
		return ErrNegativeDepth
	}
	if c.Parallel < 0 {
		return ErrNegativeWorkers
	}
	_, e := c.Timeout()
	return e
}

// Timeout returns parsed match_timeout, zero if not set.
func (c *Config) Timeout() (time.Duration, error) {
	if c.MatchTimeout == "" {
		return 0, nil
	}

	d, e := time.ParseDuration(c.MatchTimeout)
	if e != nil {
		return 0, fmt.Errorf("invalid match_timeout: %w", e)
	}
	return d, nil
}

// GrammarPath returns grammar file path resolved relative to config file directory.
func (c *Config) GrammarPath(configPath string) string {
	if c.Grammar == "" || configPath == "" || filepath.IsAbs(c.Grammar) {
		return c.Grammar
	}
	return filepath.Join(filepath.Dir(configPath), c.Grammar)
}
