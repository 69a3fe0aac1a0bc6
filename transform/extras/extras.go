// Package extras provides optional transforms registered under "ext" namespace:
//
//	$ext.lower(expr, lang?)   lower case, lang is a BCP 47 tag like "tr"
//	$ext.upper(expr, lang?)   upper case
//	$ext.title(expr, lang?)   title case
//	$ext.trim(expr)           strips surrounding white space
//	$ext.join(expr)           concatenates all strings found in matched value
//	$ext.decimal(expr, places?)  converts to decimal.Decimal, optionally rounded
//	$ext.uuid(expr)           converts to uuid.UUID
package extras

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	err "github.com/ava12/barg/errors"
	"github.com/ava12/barg/transform"
	"github.com/ava12/barg/value"
)

// Namespace holds extra transforms.
const Namespace = "ext"

// Transforms returns extra transforms as a namespace map accepted by Registry.Merge.
func Transforms() map[string]any {
	return map[string]any{
		Namespace: map[string]any{
			"lower":   caser("lower", cases.Lower),
			"upper":   caser("upper", cases.Upper),
			"title":   caser("title", cases.Title),
			"trim":    transform.Func(trim),
			"join":    transform.Func(join),
			"decimal": transform.Func(toDecimal),
			"uuid":    transform.Func(toUUID),
		},
	}
}

// Register adds extra transforms to r.
func Register(r *transform.Registry) error {
	return r.Merge(Transforms())
}

func stringValue(name string, v value.Value) (string, error) {
	s, is := value.Unmark(v).(string)
	if !is {
		return "", err.Format(transform.WrongValueError, "ext.%s: string expected, got %s", name, value.String(v))
	}
	return s, nil
}

func caser(name string, newCaser func(language.Tag, ...cases.Option) cases.Caser) transform.Func {
	return func(_ transform.Context, v value.Value, args ...any) (value.Value, error) {
		s, e := stringValue(name, v)
		if e != nil {
			return nil, e
		}

		tag := language.Und
		if len(args) > 0 {
			lang, is := args[0].(string)
			if !is {
				return nil, err.Format(transform.WrongArgumentError, "ext.%s: language tag expected, got %v", name, args[0])
			}
			tag, e = language.Parse(strings.ReplaceAll(lang, "_", "-"))
			if e != nil {
				return nil, err.Format(transform.WrongArgumentError, "ext.%s: incorrect language tag %q", name, lang)
			}
		}

		return newCaser(tag).String(s), nil
	}
}

func trim(_ transform.Context, v value.Value, _ ...any) (value.Value, error) {
	s, e := stringValue("trim", v)
	if e != nil {
		return nil, e
	}
	return strings.TrimSpace(s), nil
}

func join(_ transform.Context, v value.Value, _ ...any) (value.Value, error) {
	var sb strings.Builder
	value.Walk(v, func(stat value.WalkStat) value.WalkFlags {
		if s, is := stat.Value.(string); is {
			sb.WriteString(s)
		}
		return 0
	})
	return sb.String(), nil
}

func toDecimal(_ transform.Context, v value.Value, args ...any) (value.Value, error) {
	s, e := stringValue("decimal", v)
	if e != nil {
		return nil, e
	}

	d, e := decimal.NewFromString(strings.TrimSpace(s))
	if e != nil {
		return nil, err.Format(transform.WrongValueError, "ext.decimal: invalid decimal string %q", s)
	}

	if len(args) > 0 {
		places, is := args[0].(int)
		if !is {
			return nil, err.Format(transform.WrongArgumentError, "ext.decimal: number of places expected, got %v", args[0])
		}
		d = d.Round(int32(places))
	}
	return d, nil
}

func toUUID(_ transform.Context, v value.Value, _ ...any) (value.Value, error) {
	s, e := stringValue("uuid", v)
	if e != nil {
		return nil, e
	}

	id, e := uuid.Parse(s)
	if e != nil {
		return nil, err.Format(transform.WrongValueError, "ext.uuid: %s", e.Error())
	}
	return id, nil
}
