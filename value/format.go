package value

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Equal reports whether a and b are structurally equal, marks included.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil

	case string:
		y, is := b.(string)
		return is && x == y

	case int:
		y, is := b.(int)
		return is && x == y

	case []Value:
		y, is := b.([]Value)
		if !is || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true

	case *StructValue:
		y, is := b.(*StructValue)
		if !is || x.mark != y.mark || !equalNames(x.typ.fields, y.typ.fields) {
			return false
		}
		for i := range x.fields {
			if !Equal(x.fields[i], y.fields[i]) {
				return false
			}
		}
		return true

	case *EnumValue:
		y, is := b.(*EnumValue)
		return is && x.tag == y.tag && x.mark == y.mark &&
			equalNames(x.typ.tags, y.typ.tags) && Equal(x.value, y.value)

	case *Marked:
		y, is := b.(*Marked)
		return is && x.Mark == y.Mark && Equal(x.Value, y.Value)

	default:
		return reflect.DeepEqual(a, b)
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String returns human readable representation of v:
// strings are quoted, lists use brackets, structs use braces,
// enums look like tag(value), marks are appended after "@".
func String(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")

	case string:
		sb.WriteString(strconv.Quote(x))

	case int:
		sb.WriteString(strconv.Itoa(x))

	case []Value:
		sb.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, item)
		}
		sb.WriteByte(']')

	case *StructValue:
		sb.WriteByte('{')
		for i, name := range x.typ.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name)
			sb.WriteString(": ")
			writeValue(sb, x.fields[i])
		}
		sb.WriteByte('}')
		writeMark(sb, x.mark)

	case *EnumValue:
		sb.WriteString(x.tag)
		sb.WriteByte('(')
		writeValue(sb, x.value)
		sb.WriteByte(')')
		writeMark(sb, x.mark)

	case *Marked:
		writeValue(sb, x.Value)
		writeMark(sb, x.Mark)

	case fmt.Stringer:
		sb.WriteString(x.String())

	default:
		fmt.Fprintf(sb, "%v", x)
	}
}

func writeMark(sb *strings.Builder, mark string) {
	if mark != "" {
		sb.WriteByte('@')
		sb.WriteString(mark)
	}
}
