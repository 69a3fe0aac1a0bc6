package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/internal/test"
	"github.com/ava12/barg/value"
)

type testContext struct {
	r *Registry
}

func (c testContext) Logger() *zap.Logger {
	return zap.NewNop()
}

func (c testContext) Lookup(name string) (Func, error) {
	return c.r.Lookup(name)
}

var ctx = testContext{Default()}

func call(t *testing.T, name string, v value.Value, args ...any) (value.Value, error) {
	fn, e := Default().Lookup(BuiltinNamespace + "." + name)
	require.NoError(t, e)
	return fn(ctx, v, args...)
}

func pair(a, b value.Value) *value.StructValue {
	return value.NewStruct(value.NewStructType([]string{"a", "b"}), []value.Value{a, b})
}

func choice(tag string, v value.Value) *value.EnumValue {
	return value.NewEnum(value.NewEnumType([]string{"first", "second"}), tag, v)
}

func TestLookup(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{
		"builtin.delete", "builtin.filter", "builtin.int", "builtin.mark", "builtin.take",
	}, r.Names())

	_, e := r.Lookup("builtin.nothing")
	test.ExpectErrorCode(t, UnknownTransformError, e)
	assert.True(t, err.IsBadGrammar(e))

	_, e = r.Lookup("builtin.take.deeper")
	test.ExpectErrorCode(t, UnknownTransformError, e)

	_, e = r.Lookup("builtin")
	test.ExpectErrorCode(t, NotCallableError, e)
	assert.True(t, err.IsInternal(e))

	_, e = r.Lookup("builtin..take")
	test.ExpectErrorCode(t, WrongNameError, e)
}

func TestRegisterAndMerge(t *testing.T) {
	r := Default()
	upper := func(_ Context, v value.Value, _ ...any) (value.Value, error) {
		return "upper", nil
	}

	require.NoError(t, r.Merge(map[string]any{
		"my.upper": upper,
		"text": map[string]any{
			"twice": Func(upper),
		},
	}))
	for _, name := range []string{"my.upper", "text.twice", "builtin.take"} {
		_, e := r.Lookup(name)
		assert.NoError(t, e, name)
	}

	test.ExpectErrorCode(t, WrongNameError, r.Register("builtin", upper))
	test.ExpectErrorCode(t, WrongNameError, r.Register("my.upper.x", upper))
	test.ExpectErrorCode(t, WrongNameError, r.Merge(map[string]any{"bad": 42}))

	clone := r.Clone()
	require.NoError(t, clone.Register("builtin.extra", upper))
	_, e := r.Lookup("builtin.extra")
	test.ExpectErrorCode(t, UnknownTransformError, e)
}

func TestTake(t *testing.T) {
	res, e := call(t, TakeName, pair("x", "y"), "b")
	require.NoError(t, e)
	assert.Equal(t, "y", res)

	res, e = call(t, TakeName, choice("second", "b"), "anything")
	require.NoError(t, e)
	assert.Equal(t, "b", res)

	res, e = call(t, TakeName, choice("first", "a"))
	require.NoError(t, e)
	assert.Equal(t, "a", res)

	_, e = call(t, TakeName, pair("x", "y"), "c")
	test.ExpectErrorCode(t, WrongFieldError, e)
	_, e = call(t, TakeName, pair("x", "y"))
	test.ExpectErrorCode(t, WrongFieldError, e)
	_, e = call(t, TakeName, pair("x", "y"), 1)
	test.ExpectErrorCode(t, WrongArgumentError, e)
	_, e = call(t, TakeName, "plain", "a")
	test.ExpectErrorCode(t, NotStructError, e)
}

func TestInt(t *testing.T) {
	res, e := call(t, IntName, "42")
	require.NoError(t, e)
	assert.Equal(t, 42, res)

	_, e = call(t, IntName, []value.Value{"4"})
	test.ExpectErrorCode(t, WrongValueError, e)
	_, e = call(t, IntName, "4x")
	test.ExpectErrorCode(t, WrongValueError, e)
}

func TestDelete(t *testing.T) {
	original := pair("x", "y")
	res, e := call(t, DeleteName, original, "a")
	require.NoError(t, e)
	assert.True(t, value.Equal(pair(nil, "y"), res))
	assert.Equal(t, "x", original.Field(0))

	res, e = call(t, DeleteName, choice("first", "a"), "first")
	require.NoError(t, e)
	assert.Nil(t, res.(*value.EnumValue).Value())

	res, e = call(t, DeleteName, choice("first", "a"), "second")
	require.NoError(t, e)
	assert.Equal(t, "a", res.(*value.EnumValue).Value())

	res, e = call(t, DeleteName, choice("second", "b"))
	require.NoError(t, e)
	assert.Nil(t, res.(*value.EnumValue).Value())

	_, e = call(t, DeleteName, pair("x", "y"), "z")
	test.ExpectErrorCode(t, WrongFieldError, e)
	_, e = call(t, DeleteName, 5, "z")
	test.ExpectErrorCode(t, NotStructError, e)
}

func TestMarkAndFilter(t *testing.T) {
	_, e := call(t, MarkName, "x")
	test.ExpectErrorCode(t, WrongMarkError, e)

	keep, e := call(t, MarkName, "x", "keep")
	require.NoError(t, e)
	keepStruct, e := call(t, MarkName, pair("a", "b"), "keep")
	require.NoError(t, e)
	drop, e := call(t, MarkName, "y", "drop")
	require.NoError(t, e)

	res, e := call(t, FilterName, []value.Value{keep, "z", drop, keepStruct}, "keep")
	require.NoError(t, e)
	items := res.([]value.Value)
	require.Len(t, items, 2)
	assert.Equal(t, "x", items[0])
	assert.Equal(t, "keep", value.MarkOf(items[1]))

	_, e = call(t, FilterName, "x", "keep")
	test.ExpectErrorCode(t, NotListError, e)
	_, e = call(t, FilterName, []value.Value{})
	test.ExpectErrorCode(t, WrongMarkError, e)
}
