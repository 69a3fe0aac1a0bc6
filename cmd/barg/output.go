package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/ava12/barg/ast"
	"github.com/ava12/barg/value"
)

var (
	inputFmt   = color.New(color.FgYellow).SprintFunc()
	missingFmt = color.New(color.FgRed).SprintFunc()
	labelFmt   = color.New(color.FgBlue).SprintFunc()
)

type inputResult struct {
	Input   string
	Matches []ast.Match
}

type jsonMatch struct {
	Len   int         `json:"len"`
	Value value.Value `json:"value"`
}

type jsonResult struct {
	Input   string      `json:"input"`
	Matches []jsonMatch `json:"matches"`
}

func writeResults(w io.Writer, format string, results []inputResult) error {
	switch format {
	case "json":
		return writeJson(w, results)
	case "yaml":
		return writeYaml(w, results)
	case "tree":
		writeTrees(w, results)
		return nil
	default:
		writeText(w, results)
		return nil
	}
}

func writeText(w io.Writer, results []inputResult) {
	for _, r := range results {
		if len(r.Matches) == 0 {
			fmt.Fprintf(w, "%s\t%s\n", inputFmt(r.Input), missingFmt("-"))
			continue
		}
		for _, m := range r.Matches {
			fmt.Fprintf(w, "%s\t%d\t%s\n", inputFmt(r.Input), m.Len, value.String(m.Value))
		}
	}
}

func writeJson(w io.Writer, results []inputResult) error {
	res := make([]jsonResult, len(results))
	for i, r := range results {
		res[i] = jsonResult{Input: r.Input, Matches: make([]jsonMatch, len(r.Matches))}
		for j, m := range r.Matches {
			res[i].Matches[j] = jsonMatch{m.Len, m.Value}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// plain converts v to values goccy/go-yaml encodes preserving field order.
func plain(v value.Value) any {
	switch x := value.Unmark(v).(type) {
	case []value.Value:
		res := make([]any, len(x))
		for i, item := range x {
			res[i] = plain(item)
		}
		return res

	case *value.StructValue:
		fields := x.Type().Fields()
		res := make(yaml.MapSlice, len(fields))
		for i, name := range fields {
			res[i] = yaml.MapItem{Key: name, Value: plain(x.Field(i))}
		}
		return res

	case *value.EnumValue:
		return yaml.MapSlice{
			{Key: "tag", Value: x.Tag()},
			{Key: "value", Value: plain(x.Value())},
		}

	case fmt.Stringer:
		return x.String()

	default:
		return x
	}
}

func writeYaml(w io.Writer, results []inputResult) error {
	res := make([]yaml.MapSlice, len(results))
	for i, r := range results {
		matches := make([]yaml.MapSlice, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = yaml.MapSlice{
				{Key: "len", Value: m.Len},
				{Key: "value", Value: plain(m.Value)},
			}
		}
		res[i] = yaml.MapSlice{
			{Key: "input", Value: r.Input},
			{Key: "matches", Value: matches},
		}
	}

	content, e := yaml.Marshal(res)
	if e != nil {
		return fmt.Errorf("failed to encode YAML: %w", e)
	}
	_, e = w.Write(content)
	return e
}

func writeTree(w io.Writer, v value.Value, level int) {
	value.Walk(v, func(stat value.WalkStat) value.WalkFlags {
		indent := strings.Repeat("  ", level+stat.Level)
		name := stat.Name
		if stat.Level == 0 {
			name = "."
		}

		switch x := stat.Value.(type) {
		case []value.Value:
			fmt.Fprintf(w, "%s%s list[%d]\n", indent, labelFmt(name), len(x))
		case *value.StructValue:
			fmt.Fprintf(w, "%s%s struct%s\n", indent, labelFmt(name), markSuffix(x.Mark()))
		case *value.EnumValue:
			fmt.Fprintf(w, "%s%s enum%s\n", indent, labelFmt(name), markSuffix(x.Mark()))
		default:
			fmt.Fprintf(w, "%s%s %s\n", indent, labelFmt(name), value.String(x))
		}
		return 0
	})
}

func markSuffix(mark string) string {
	if mark == "" {
		return ""
	}
	return " @" + mark
}

func writeTrees(w io.Writer, results []inputResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\n", inputFmt(r.Input))
		if len(r.Matches) == 0 {
			fmt.Fprintf(w, "  %s\n", missingFmt("no match"))
			continue
		}
		for _, m := range r.Matches {
			fmt.Fprintf(w, "  match len=%d\n", m.Len)
			writeTree(w, m.Value, 2)
		}
	}
}
