package parser

import (
	"sort"

	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/internal/ints"
	"github.com/ava12/barg/internal/queue"
)

// Check reports undefined, left-recursive, and (if roots are given) unreachable rules.
// Returns the first found problem as *errors.Error.
func Check(top *ast.Toplevel, roots ...string) error {
	if names := Undefined(top); len(names) > 0 {
		return undefinedRulesError(names)
	}
	if names := LeftRecursive(top); len(names) > 0 {
		return leftRecursionError(names)
	}
	if names := Unreachable(top, roots...); len(names) > 0 {
		return unreachableRulesError(names)
	}
	return nil
}

// Undefined returns sorted names of rules referred to but not defined.
func Undefined(top *ast.Toplevel) []string {
	seen := make(map[string]bool)
	var res []string
	for _, name := range top.References() {
		if _, defined := top.Lookup(name); !defined && !seen[name] {
			seen[name] = true
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// rule graph with rules indexed in declaration order
type ruleGraph struct {
	top   *ast.Toplevel
	names []string
	index map[string]int
}

func newRuleGraph(top *ast.Toplevel) *ruleGraph {
	g := &ruleGraph{top: top, names: top.Names(), index: make(map[string]int)}
	for i, name := range g.names {
		g.index[name] = i
	}
	return g
}

func (g *ruleGraph) expr(i int) ast.Node {
	n, _ := g.top.Lookup(g.names[i])
	return n
}

// reach returns indexes of rules reachable from start using edges, start itself is
// included only if it lies on a cycle.
func (g *ruleGraph) reach(start int, edges func(i int) *ints.Set) *ints.Set {
	visited := ints.NewSet()
	q := queue.New(edges(start).Items()...)
	for {
		i, found := q.Pop()
		if !found {
			break
		}
		if visited.Contains(i) {
			continue
		}

		visited.Add(i)
		q.Push(edges(i).Items()...)
	}
	return visited
}

// LeftRecursive returns names (in declaration order) of rules that can refer to
// themselves without consuming input.
func LeftRecursive(top *ast.Toplevel) []string {
	g := newRuleGraph(top)
	nullable := g.nullable()
	firsts := make([]*ints.Set, len(g.names))
	for i := range g.names {
		firsts[i] = ints.NewSet()
		g.leftmost(g.expr(i), nullable, firsts[i])
	}

	var res []string
	for i, name := range g.names {
		if g.reach(i, func(j int) *ints.Set { return firsts[j] }).Contains(i) {
			res = append(res, name)
		}
	}
	return res
}

// nullable returns rules able to match empty input, undefined rules are not nullable.
func (g *ruleGraph) nullable() map[string]bool {
	res := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for i, name := range g.names {
			if !res[name] && isNullable(g.expr(i), res) {
				res[name] = true
				changed = true
			}
		}
	}
	return res
}

func isNullable(n ast.Node, rules map[string]bool) bool {
	switch x := n.(type) {
	case *ast.Variable:
		return rules[x.Name()]

	case *ast.String:
		re, e := ast.CompilePattern(x.Pattern())
		if e != nil {
			return false
		}
		found, e := re.MatchString("")
		return e == nil && found

	case *ast.Struct:
		for _, f := range x.Fields() {
			if !isNullable(f.Expr, rules) {
				return false
			}
		}
		return true

	case *ast.Enum:
		for _, v := range x.Variants() {
			if isNullable(v.Expr, rules) {
				return true
			}
		}
		return false

	case *ast.List:
		min, _ := x.Range()
		return min == 0 || isNullable(x.Elem(), rules)

	case *ast.Transform:
		return isNullable(x.Expr(), rules)

	default:
		return false
	}
}

// leftmost adds to res rules that n may refer to at its start position.
func (g *ruleGraph) leftmost(n ast.Node, nullable map[string]bool, res *ints.Set) {
	switch x := n.(type) {
	case *ast.Variable:
		if i, has := g.index[x.Name()]; has {
			res.Add(i)
		}

	case *ast.Struct:
		for _, f := range x.Fields() {
			g.leftmost(f.Expr, nullable, res)
			if !isNullable(f.Expr, nullable) {
				break
			}
		}

	case *ast.List:
		if _, max := x.Range(); max != 0 {
			g.leftmost(x.Elem(), nullable, res)
		}

	case *ast.Enum, *ast.Transform:
		for _, c := range ast.Children(n) {
			g.leftmost(c, nullable, res)
		}
	}
}

// Unreachable returns names (in declaration order) of rules not reachable from any of roots.
// Returns nil if no roots are given.
func Unreachable(top *ast.Toplevel, roots ...string) []string {
	if len(roots) == 0 {
		return nil
	}

	g := newRuleGraph(top)
	refs := make([]*ints.Set, len(g.names))
	for i := range g.names {
		refs[i] = ints.NewSet()
		for _, name := range ast.References(g.expr(i)) {
			if j, has := g.index[name]; has {
				refs[i].Add(j)
			}
		}
	}

	reached := ints.NewSet()
	for _, root := range roots {
		if i, has := g.index[root]; has {
			reached.Add(i)
			reached.Union(g.reach(i, func(j int) *ints.Set { return refs[j] }))
		}
	}

	var res []string
	for i, name := range g.names {
		if !reached.Contains(i) {
			res = append(res, name)
		}
	}
	return res
}
