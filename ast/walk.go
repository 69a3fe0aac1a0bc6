package ast

// Visitor is called for every visited node, returning false skips node children.
type Visitor func(n Node) (walkChildren bool)

// Children returns direct sub-expressions of n in matching order.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *Struct:
		return exprs(x.fields)
	case *Enum:
		return exprs(x.variants)
	case *List:
		return []Node{x.elem}
	case *Transform:
		return []Node{x.expr}
	default:
		return nil
	}
}

func exprs(fields []Field) []Node {
	res := make([]Node, len(fields))
	for i, f := range fields {
		res[i] = f.Expr
	}
	return res
}

// Walk visits n and its descendants depth first. Variables are not followed.
func Walk(n Node, visitor Visitor) {
	if n == nil || !visitor(n) {
		return
	}

	for _, c := range Children(n) {
		Walk(c, visitor)
	}
}

// References returns names of rules referred by n in order of first appearance.
func References(n Node) []string {
	var res []string
	seen := make(map[string]bool)
	Walk(n, func(n Node) bool {
		if v, is := n.(*Variable); is && !seen[v.name] {
			seen[v.name] = true
			res = append(res, v.name)
		}
		return true
	})
	return res
}
