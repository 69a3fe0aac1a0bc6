// Package value defines results produced by grammar matching.
//
// A Value is one of:
//   - string: text matched by a string pattern;
//   - int: result of builtin.int transform;
//   - []Value: repetitions matched by a list;
//   - *StructValue: fields matched by a struct;
//   - *EnumValue: the variant matched by an enum;
//   - *Marked: any other value tagged by builtin.mark;
//   - nil: a value removed by builtin.delete;
//   - anything returned by user transforms.
//
// Values produced by the matcher are never shared between results,
// transforms return modified copies instead of changing their arguments.
package value

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is a match result.
type Value = any

// StructType describes results of one struct node.
type StructType struct {
	fields []string
	index  map[string]int
}

// NewStructType creates a type, field names must be unique.
func NewStructType(fields []string) *StructType {
	t := &StructType{fields: append([]string(nil), fields...), index: make(map[string]int, len(fields))}
	for i, f := range fields {
		t.index[f] = i
	}
	return t
}

// Fields returns field names in declaration order.
func (t *StructType) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Index returns the position of named field.
func (t *StructType) Index(name string) (int, bool) {
	i, has := t.index[name]
	return i, has
}

func (t *StructType) String() string {
	return "struct{" + strings.Join(t.fields, ", ") + "}"
}

// StructValue is an instance of StructType.
type StructValue struct {
	typ    *StructType
	fields []Value
	mark   string
}

// NewStruct creates a struct value; fields are taken as is and must match t.
func NewStruct(t *StructType, fields []Value) *StructValue {
	return &StructValue{typ: t, fields: fields}
}

func (s *StructValue) Type() *StructType {
	return s.typ
}

func (s *StructValue) Len() int {
	return len(s.fields)
}

// Field returns i-th field value.
func (s *StructValue) Field(i int) Value {
	return s.fields[i]
}

// Get returns named field value.
func (s *StructValue) Get(name string) (Value, bool) {
	i, has := s.typ.Index(name)
	if !has {
		return nil, false
	}
	return s.fields[i], true
}

// With returns a copy having named field set to v.
// Returns nil, false if there is no such field.
func (s *StructValue) With(name string, v Value) (*StructValue, bool) {
	i, has := s.typ.Index(name)
	if !has {
		return nil, false
	}

	res := s.clone()
	res.fields[i] = v
	return res, true
}

func (s *StructValue) Mark() string {
	return s.mark
}

func (s *StructValue) clone() *StructValue {
	return &StructValue{typ: s.typ, fields: append([]Value(nil), s.fields...), mark: s.mark}
}

// MarshalJSON encodes the value as an object with fields in declaration order.
func (s *StructValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.typ.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		buf.Write(key)
		buf.WriteByte(':')
		content, e := json.Marshal(s.fields[i])
		if e != nil {
			return nil, e
		}
		buf.Write(content)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EnumType describes results of one enum node.
type EnumType struct {
	tags []string
}

// NewEnumType creates a type, tags must be unique.
func NewEnumType(tags []string) *EnumType {
	return &EnumType{append([]string(nil), tags...)}
}

// Tags returns variant tags in declaration order.
func (t *EnumType) Tags() []string {
	return append([]string(nil), t.tags...)
}

func (t *EnumType) String() string {
	return "enum{" + strings.Join(t.tags, ", ") + "}"
}

// EnumValue is the matched variant of EnumType.
type EnumValue struct {
	typ   *EnumType
	tag   string
	value Value
	mark  string
}

func NewEnum(t *EnumType, tag string, v Value) *EnumValue {
	return &EnumValue{typ: t, tag: tag, value: v}
}

func (e *EnumValue) Type() *EnumType {
	return e.typ
}

func (e *EnumValue) Tag() string {
	return e.tag
}

func (e *EnumValue) Value() Value {
	return e.value
}

// WithValue returns a copy having v as the variant value.
func (e *EnumValue) WithValue(v Value) *EnumValue {
	res := *e
	res.value = v
	return &res
}

func (e *EnumValue) Mark() string {
	return e.mark
}

func (e *EnumValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tag   string `json:"tag"`
		Value Value  `json:"value"`
	}{e.tag, e.value})
}

// Marked is a value of a kind that cannot carry a mark by itself.
type Marked struct {
	Mark  string
	Value Value
}

func (m *Marked) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value)
}

// Mark returns a copy of v tagged with name.
// Structs and enums carry marks themselves, other values get wrapped in *Marked.
func Mark(v Value, name string) Value {
	switch x := v.(type) {
	case *StructValue:
		res := x.clone()
		res.mark = name
		return res

	case *EnumValue:
		res := *x
		res.mark = name
		return &res

	case *Marked:
		return &Marked{name, x.Value}

	default:
		return &Marked{name, v}
	}
}

// MarkOf returns the mark of v or empty string.
func MarkOf(v Value) string {
	switch x := v.(type) {
	case *StructValue:
		return x.mark
	case *EnumValue:
		return x.mark
	case *Marked:
		return x.Mark
	default:
		return ""
	}
}

// Unmark returns the value wrapped by *Marked or v itself.
func Unmark(v Value) Value {
	if m, is := v.(*Marked); is {
		return m.Value
	}
	return v
}
