package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barg.yaml")
	writeFile(t, path, `
grammar: calc.barg
symbol: expr
format: json
lenient: true
strict_lexer: true
max_depth: 500
match_timeout: 2s
parallel: 4
extras: true
`)

	c, e := Load(path)
	assert.NoError(t, e)
	assert.Equal(t, &Config{
		Grammar:      "calc.barg",
		Symbol:       "expr",
		Format:       "json",
		Lenient:      true,
		StrictLexer:  true,
		MaxDepth:     500,
		MatchTimeout: "2s",
		Parallel:     4,
		Extras:       true,
	}, c)

	d, e := c.Timeout()
	assert.NoError(t, e)
	assert.Equal(t, 2*time.Second, d)
	assert.Equal(t, filepath.Join(dir, "calc.barg"), c.GrammarPath(path))
}

func TestLoadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barg.toml")
	writeFile(t, path, `
grammar = "/abs/rules.barg"
symbol = "doc"
parallel = 2
`)

	c, e := Load(path)
	assert.NoError(t, e)
	assert.Equal(t, "doc", c.Symbol)
	assert.Equal(t, "text", c.Format)
	assert.Equal(t, 2, c.Parallel)
	assert.Equal(t, "/abs/rules.barg", c.GrammarPath(path))
}

func TestUnknownKeys(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "y", "barg.yaml")
	writeFile(t, yamlPath, "symbol: a\ncolour: red\n")
	_, e := Load(yamlPath)
	assert.Error(t, e)

	tomlPath := filepath.Join(dir, "t", "barg.toml")
	writeFile(t, tomlPath, "symbol = \"a\"\ncolour = \"red\"\n")
	_, e = Load(tomlPath)
	assert.IsError(t, e, ErrUnknownKeys)
	assert.Contains(t, e.Error(), "colour")
}

func TestValidate(t *testing.T) {
	samples := []struct {
		content string
		target  error
	}{
		{"format: xml\n", ErrUnknownFormat},
		{"max_depth: -1\n", ErrNegativeDepth},
		{"parallel: -2\n", ErrNegativeWorkers},
	}

	for _, s := range samples {
		path := filepath.Join(t.TempDir(), "barg.yml")
		writeFile(t, path, s.content)
		_, e := Load(path)
		assert.IsError(t, e, s.target, s.content)
	}

	path := filepath.Join(t.TempDir(), "barg.yaml")
	writeFile(t, path, "match_timeout: soon\n")
	_, e := Load(path)
	assert.Error(t, e)
	assert.Contains(t, e.Error(), "match_timeout")
}

func TestEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "BARG_TEST_SYMBOL=from_dotenv\nBARG_TEST_FORMAT=yaml\n")
	path := filepath.Join(dir, "barg.yaml")
	writeFile(t, path, "symbol: ${BARG_TEST_SYMBOL}\nformat: $BARG_TEST_FORMAT\ngrammar: ${BARG_TEST_DIR}/g.barg\n")

	t.Setenv("BARG_TEST_DIR", "/rules")
	t.Setenv("BARG_TEST_FORMAT", "tree")
	t.Cleanup(func() {
		os.Unsetenv("BARG_TEST_SYMBOL")
	})

	c, e := Load(path)
	assert.NoError(t, e)
	assert.Equal(t, "from_dotenv", c.Symbol)
	assert.Equal(t, "tree", c.Format)
	assert.Equal(t, "/rules/g.barg", c.Grammar)
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	assert.NoError(t, os.MkdirAll(nested, 0o755))

	writeFile(t, filepath.Join(root, "a", "barg.toml"), "symbol = \"outer\"\n")
	writeFile(t, filepath.Join(root, "a", "b", "barg.yaml"), "symbol: inner\n")

	c, path, e := FindAndLoad(nested)
	assert.NoError(t, e)
	assert.Equal(t, filepath.Join(root, "a", "b", "barg.yaml"), path)
	assert.Equal(t, "inner", c.Symbol)

	assert.NoError(t, os.Remove(path))
	c, path, e = FindAndLoad(nested)
	assert.NoError(t, e)
	assert.Equal(t, filepath.Join(root, "a", "barg.toml"), path)
	assert.Equal(t, "outer", c.Symbol)
}
