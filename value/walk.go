package value

import "strconv"

// WalkStat describes visited value.
type WalkStat struct {
	Value Value
	// Name is a field name, an enum tag, a list index, or empty string for the root.
	Name  string
	Level int
}

// WalkFlags are returned by Visitor.
type WalkFlags int

const (
	// WalkerStop stops walking.
	WalkerStop WalkFlags = 1 << iota
	// WalkerSkipChildren skips nested values of current value.
	WalkerSkipChildren
)

type Visitor func(stat WalkStat) WalkFlags

// Walk visits v and its nested values depth first, parents before children.
// Marked values are visited once, as the value they wrap.
func Walk(v Value, visitor Visitor) {
	walk(WalkStat{Value: v}, visitor)
}

func walk(stat WalkStat, visitor Visitor) (stop bool) {
	stat.Value = Unmark(stat.Value)
	flags := visitor(stat)
	if flags&WalkerStop != 0 {
		return true
	}
	if flags&WalkerSkipChildren != 0 {
		return false
	}

	level := stat.Level + 1
	switch x := stat.Value.(type) {
	case []Value:
		for i, item := range x {
			if walk(WalkStat{item, strconv.Itoa(i), level}, visitor) {
				return true
			}
		}

	case *StructValue:
		for i, name := range x.typ.fields {
			if walk(WalkStat{x.fields[i], name, level}, visitor) {
				return true
			}
		}

	case *EnumValue:
		return walk(WalkStat{x.value, x.tag, level}, visitor)
	}
	return false
}
