// Package ast defines grammar nodes, the matching context, and the matcher.
//
// Nodes are immutable after construction and may be shared by any number of
// modules and goroutines. Every node has a structural key: two nodes describing
// the same sub-grammar have equal keys, so they share one generated result type.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	err "github.com/ava12/barg/errors"
)

// Error codes used by ast:
const (
	DuplicateFieldError = err.MatchErrors + iota
	WrongRangeError
	WrongModeError
	WrongArgumentError
	UndefinedRuleError
	WrongRegexpError
	RecursionLimitError
	MatchTimeoutError
)

// Node is a grammar expression.
type Node interface {
	// String returns canonical grammar text of the node.
	String() string
	// Key returns structural key of the node.
	Key() string

	match(st *state, pos int, k cont) error
}

// Equal reports whether two nodes are structurally equal.
func Equal(a, b Node) bool {
	return a.Key() == b.Key()
}

// Field is a named struct field or enum variant.
type Field struct {
	Name string
	Expr Node
}

// Variable refers to a top-level rule by name, the name is resolved while matching.
type Variable struct {
	name string
}

func NewVariable(name string) *Variable {
	return &Variable{name}
}

func (n *Variable) Name() string {
	return n.name
}

func (n *Variable) String() string {
	return n.name
}

func (n *Variable) Key() string {
	return n.name
}

// String matches a regular expression anchored at current position.
type String struct {
	pattern string
}

func NewString(pattern string) *String {
	return &String{pattern}
}

func (n *String) Pattern() string {
	return n.pattern
}

func (n *String) String() string {
	return QuotePattern(n.pattern)
}

func (n *String) Key() string {
	return n.String()
}

// QuotePattern returns grammar literal for a pattern.
func QuotePattern(pattern string) string {
	return `"` + strings.ReplaceAll(pattern, `"`, `\"`) + `"`
}

// Struct matches its fields one after another.
type Struct struct {
	fields []Field
	key    string
}

// NewStruct creates a struct node, field names must be unique.
func NewStruct(fields []Field) (*Struct, error) {
	if e := checkNames("struct field", fields); e != nil {
		return nil, e
	}

	fs := append([]Field(nil), fields...)
	return &Struct{fs, writeFields("struct", fs)}, nil
}

func checkNames(what string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return err.Format(DuplicateFieldError, "duplicate %s name %q", what, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func writeFields(keyword string, fields []Field) string {
	if len(fields) == 0 {
		return keyword + " {}"
	}

	var sb strings.Builder
	sb.WriteString(keyword)
	sb.WriteString(" { ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Expr.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

func (n *Struct) Fields() []Field {
	return append([]Field(nil), n.fields...)
}

// Names returns field names in declaration order.
func (n *Struct) Names() []string {
	return fieldNames(n.fields)
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func (n *Struct) String() string {
	return n.key
}

func (n *Struct) Key() string {
	return n.key
}

// Enum matches every variant at the same position.
type Enum struct {
	variants []Field
	key      string
}

// NewEnum creates an enum node, variant tags must be unique.
func NewEnum(variants []Field) (*Enum, error) {
	if e := checkNames("enum variant", variants); e != nil {
		return nil, e
	}

	vs := append([]Field(nil), variants...)
	return &Enum{vs, writeFields("enum", vs)}, nil
}

func (n *Enum) Variants() []Field {
	return append([]Field(nil), n.variants...)
}

// Tags returns variant tags in declaration order.
func (n *Enum) Tags() []string {
	return fieldNames(n.variants)
}

func (n *Enum) String() string {
	return n.key
}

func (n *Enum) Key() string {
	return n.key
}

// Mode defines the order lists try repetition counts in.
type Mode string

const (
	// Greedy tries more repetitions before fewer.
	Greedy Mode = "greedy"
	// Lazy tries fewer repetitions before more.
	Lazy Mode = "lazy"
)

// Unbounded is the List maximum meaning no upper limit.
const Unbounded = -1

// ParseMode converts mode name, empty name means Greedy.
func ParseMode(name string) (Mode, bool) {
	switch Mode(name) {
	case "", Greedy:
		return Greedy, true
	case Lazy:
		return Lazy, true
	default:
		return "", false
	}
}

// List matches min..max repetitions (inclusive) of its element.
type List struct {
	elem     Node
	min, max int
	mode     Mode
	key      string
}

// NewList creates a list node. max is either Unbounded or not less than min.
func NewList(elem Node, min, max int, mode Mode) (*List, error) {
	m, valid := ParseMode(string(mode))
	if !valid {
		return nil, err.Format(WrongModeError, "unknown list mode %q", mode)
	}
	if min < 0 || (max != Unbounded && (max < 0 || max < min)) {
		return nil, err.Format(WrongRangeError, "incorrect list range %s", formatRange(min, max))
	}

	key := fmt.Sprintf("list[%s %s] { %s }", m, formatRange(min, max), elem.String())
	return &List{elem, min, max, m, key}, nil
}

func formatRange(min, max int) string {
	res := strconv.Itoa(min) + ".."
	if max != Unbounded {
		res += strconv.Itoa(max)
	}
	return res
}

func (n *List) Elem() Node {
	return n.elem
}

// Range returns repetition limits, max may be Unbounded.
func (n *List) Range() (min, max int) {
	return n.min, n.max
}

func (n *List) Mode() Mode {
	return n.mode
}

func (n *List) String() string {
	return n.key
}

func (n *List) Key() string {
	return n.key
}

// Transform applies named transform function to results of its expression.
type Transform struct {
	name string
	expr Node
	args []any
	key  string
}

// NewTransform creates a transform node, each argument must be either string or int.
func NewTransform(name string, expr Node, args ...any) (*Transform, error) {
	var sb strings.Builder
	sb.WriteString("$")
	sb.WriteString(name)
	sb.WriteString("(")
	sb.WriteString(expr.String())
	for _, arg := range args {
		sb.WriteString(", ")
		switch x := arg.(type) {
		case string:
			sb.WriteString(x)
		case int:
			sb.WriteString(strconv.Itoa(x))
		default:
			return nil, err.Format(WrongArgumentError, "transform argument must be identifier or integer, got %v", arg)
		}
	}
	sb.WriteString(")")

	return &Transform{name, expr, append([]any(nil), args...), sb.String()}, nil
}

func (n *Transform) Name() string {
	return n.name
}

func (n *Transform) Expr() Node {
	return n.expr
}

func (n *Transform) Args() []any {
	return append([]any(nil), n.args...)
}

func (n *Transform) String() string {
	return n.key
}

func (n *Transform) Key() string {
	return n.key
}

// Assignment binds a rule name to an expression.
type Assignment struct {
	name string
	expr Node
}

func NewAssignment(name string, expr Node) *Assignment {
	return &Assignment{name, expr}
}

func (n *Assignment) Name() string {
	return n.name
}

func (n *Assignment) Expr() Node {
	return n.expr
}

func (n *Assignment) String() string {
	return n.name + " := " + n.expr.String() + ";"
}

func (n *Assignment) Key() string {
	return n.String()
}

// Toplevel is the root of a grammar: rules in declaration order.
type Toplevel struct {
	assignments []*Assignment
	index       map[string]*Assignment
}

// NewToplevel creates grammar root. If a name is assigned twice the last assignment wins.
func NewToplevel(assignments []*Assignment) *Toplevel {
	t := &Toplevel{append([]*Assignment(nil), assignments...), make(map[string]*Assignment, len(assignments))}
	for _, a := range assignments {
		t.index[a.name] = a
	}
	return t
}

func (t *Toplevel) Assignments() []*Assignment {
	return append([]*Assignment(nil), t.assignments...)
}

// Lookup returns the expression assigned to name.
func (t *Toplevel) Lookup(name string) (Node, bool) {
	a, has := t.index[name]
	if !has {
		return nil, false
	}
	return a.expr, true
}

// Names returns rule names in declaration order.
func (t *Toplevel) Names() []string {
	names := make([]string, 0, len(t.assignments))
	seen := make(map[string]bool, len(t.assignments))
	for _, a := range t.assignments {
		if !seen[a.name] {
			seen[a.name] = true
			names = append(names, a.name)
		}
	}
	return names
}

// References returns names of rules referred by any assignment in order of first appearance.
func (t *Toplevel) References() []string {
	var res []string
	seen := make(map[string]bool)
	for _, a := range t.assignments {
		for _, name := range References(a.expr) {
			if !seen[name] {
				seen[name] = true
				res = append(res, name)
			}
		}
	}
	return res
}

func (t *Toplevel) String() string {
	lines := make([]string, len(t.assignments))
	for i, a := range t.assignments {
		lines[i] = a.String()
	}
	return strings.Join(lines, "\n")
}

func (t *Toplevel) Key() string {
	return t.String()
}
