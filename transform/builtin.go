package transform

import (
	"strconv"
	"strings"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/value"
)

// BuiltinNamespace holds builtin transforms.
const BuiltinNamespace = "builtin"

// Names of builtin transforms, full names are prefixed with BuiltinNamespace.
const (
	TakeName   = "take"
	IntName    = "int"
	DeleteName = "delete"
	MarkName   = "mark"
	FilterName = "filter"
)

// Take is the full name of take transform, parser wraps alternatives with it.
const Take = BuiltinNamespace + "." + TakeName

var builtins = map[string]Func{
	TakeName:   take,
	IntName:    toInt,
	DeleteName: deleteField,
	MarkName:   mark,
	FilterName: filter,
}

func stringArg(name string, args []any, i int) (string, error) {
	if len(args) <= i {
		return "", nil
	}

	s, is := args[i].(string)
	if !is {
		return "", err.Format(WrongArgumentError, "%s: argument %d must be an identifier, got %v", name, i+1, args[i])
	}
	return s, nil
}

func notStructError(name string, v value.Value) *err.Error {
	return err.Format(NotStructError, "%s: %s has no type discriminant", name, value.String(v))
}

// take returns named field of a struct or the value of an enum variant.
func take(_ Context, v value.Value, args ...any) (value.Value, error) {
	field, e := stringArg(TakeName, args, 0)
	if e != nil {
		return nil, e
	}

	switch x := v.(type) {
	case *value.StructValue:
		res, has := x.Get(field)
		if !has {
			return nil, wrongFieldError(TakeName, field, x)
		}
		return res, nil

	case *value.EnumValue:
		return x.Value(), nil

	default:
		return nil, notStructError(TakeName, v)
	}
}

func wrongFieldError(name, field string, s *value.StructValue) *err.Error {
	if field == "" {
		return err.Format(WrongFieldError, "%s: field name required for %s", name, s.Type())
	}
	return err.Format(WrongFieldError, "%s: no field %q in %s", name, field, s.Type())
}

// toInt converts a decimal string to int.
func toInt(_ Context, v value.Value, _ ...any) (value.Value, error) {
	s, is := v.(string)
	if !is {
		return nil, err.Format(WrongValueError, "%s: string expected, got %s", IntName, value.String(v))
	}

	res, e := strconv.Atoi(strings.TrimSpace(s))
	if e != nil {
		return nil, err.Format(WrongValueError, "%s: cannot convert %q to integer", IntName, s)
	}
	return res, nil
}

// deleteField nulls named struct field.
// For an enum it nulls the value if the name matches the tag or no name is given.
func deleteField(_ Context, v value.Value, args ...any) (value.Value, error) {
	field, e := stringArg(DeleteName, args, 0)
	if e != nil {
		return nil, e
	}

	switch x := v.(type) {
	case *value.StructValue:
		res, has := x.With(field, nil)
		if !has {
			return nil, wrongFieldError(DeleteName, field, x)
		}
		return res, nil

	case *value.EnumValue:
		if field == "" || field == x.Tag() {
			return x.WithValue(nil), nil
		}
		return x, nil

	default:
		return nil, notStructError(DeleteName, v)
	}
}

// mark tags a value so that filter can select it later.
func mark(_ Context, v value.Value, args ...any) (value.Value, error) {
	name, e := stringArg(MarkName, args, 0)
	if e != nil {
		return nil, e
	}
	if name == "" {
		return nil, err.Format(WrongMarkError, "%s: mark name required", MarkName)
	}

	return value.Mark(v, name), nil
}

// filter keeps list items marked with given name.
// Items wrapped by mark are unwrapped, structs and enums keep their marks.
func filter(_ Context, v value.Value, args ...any) (value.Value, error) {
	name, e := stringArg(FilterName, args, 0)
	if e != nil {
		return nil, e
	}
	if name == "" {
		return nil, err.Format(WrongMarkError, "%s: mark name required", FilterName)
	}

	items, is := v.([]value.Value)
	if !is {
		return nil, err.Format(NotListError, "%s: list expected, got %s", FilterName, value.String(v))
	}

	res := make([]value.Value, 0, len(items))
	for _, item := range items {
		if value.MarkOf(item) == name {
			res = append(res, value.Unmark(item))
		}
	}
	return res, nil
}
