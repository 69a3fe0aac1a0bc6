package ast

import (
	"context"
	"errors"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/value"
)

// cont receives a result and the input position (in runes) right after it.
type cont func(v value.Value, end int) error

var errStop = errors.New("matching stopped")

const checkInterval = 1024

type state struct {
	m     *Module
	ctx   context.Context
	input []rune
	depth int
	steps int
}

func newState(m *Module, ctx context.Context, input string) *state {
	return &state{m: m, ctx: ctx, input: []rune(input)}
}

// byteOffsets maps rune positions of input to byte offsets.
func byteOffsets(input string) []int {
	res := make([]int, 0, len(input)+1)
	for i := range input {
		res = append(res, i)
	}
	return append(res, len(input))
}

func (st *state) tick() error {
	st.steps++
	if st.steps%checkInterval == 0 {
		return st.ctx.Err()
	}
	return nil
}

func (st *state) enter(what string) error {
	if st.depth >= st.m.maxDepth {
		return err.Format(RecursionLimitError, "nesting limit of %d exceeded in %s", st.m.maxDepth, what)
	}
	if e := st.tick(); e != nil {
		return e
	}

	st.depth++
	return nil
}

func (st *state) leave() {
	st.depth--
}

func (n *Variable) match(st *state, pos int, k cont) error {
	def, e := st.m.Definition(n.name)
	if e != nil {
		return e
	}
	if e = st.enter(n.name); e != nil {
		return e
	}

	e = def.match(st, pos, k)
	st.leave()
	return e
}

func (n *String) match(st *state, pos int, k cont) error {
	re, e := st.m.Regexp(n.pattern)
	if e != nil {
		return e
	}
	if e = st.tick(); e != nil {
		return e
	}

	found, e := re.FindRunesMatch(st.input[pos:])
	if e != nil {
		return err.Format(MatchTimeoutError, "pattern %s: %s", n, e.Error())
	}
	if found == nil {
		return nil
	}

	return k(found.String(), pos+found.Length)
}

func (n *Struct) match(st *state, pos int, k cont) error {
	t := st.m.StructType(n)
	fields := make([]value.Value, len(n.fields))

	var step func(i, pos int) error
	step = func(i, pos int) error {
		if i == len(n.fields) {
			return k(value.NewStruct(t, append([]value.Value(nil), fields...)), pos)
		}

		return n.fields[i].Expr.match(st, pos, func(v value.Value, end int) error {
			fields[i] = v
			return step(i+1, end)
		})
	}

	return step(0, pos)
}

func (n *Enum) match(st *state, pos int, k cont) error {
	t := st.m.EnumType(n)
	for _, variant := range n.variants {
		tag := variant.Name
		e := variant.Expr.match(st, pos, func(v value.Value, end int) error {
			return k(value.NewEnum(t, tag, v), end)
		})
		if e != nil {
			return e
		}
	}
	return nil
}

func (n *List) match(st *state, pos int, k cont) error {
	var items []value.Value
	emit := func(end int) error {
		return k(append(make([]value.Value, 0, len(items)), items...), end)
	}

	var step func(pos int) error
	step = func(pos int) error {
		count := len(items)
		complete := count >= n.min
		if complete && n.mode == Lazy {
			if e := emit(pos); e != nil {
				return e
			}
		}

		if n.max == Unbounded || count < n.max {
			e := n.elem.match(st, pos, func(v value.Value, end int) error {
				if end == pos && complete {
					return nil
				}
				if e := st.tick(); e != nil {
					return e
				}

				items = append(items[:count], v)
				e := step(end)
				items = items[:count]
				return e
			})
			if e != nil {
				return e
			}
		}

		if complete && n.mode == Greedy {
			return emit(pos)
		}
		return nil
	}

	return step(pos)
}

func (n *Transform) match(st *state, pos int, k cont) error {
	fn, e := st.m.Lookup(n.name)
	if e != nil {
		return e
	}

	return n.expr.match(st, pos, func(v value.Value, end int) error {
		res, e := fn(st.m, v, n.args...)
		if e != nil {
			return e
		}
		return k(res, end)
	})
}
