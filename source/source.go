// Package source defines named grammar sources and position lookup.
package source

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// Source is an immutable named chunk of grammar text.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates a source. content must not be modified afterwards.
func New(name string, content []byte) *Source {
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s := &Source{name: name, content: content, lineStarts: make([]int, 1, lineCnt)}
	for i, c := range content {
		if c == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// NewString creates a source from a string.
func NewString(name, content string) *Source {
	return New(name, []byte(content))
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// Lines returns the number of lines, a source always has at least one.
func (s *Source) Lines() int {
	return len(s.lineStarts)
}

// LineCol converts byte offset to 1-based line and column (in runes).
// Offsets outside of content are clamped.
func (s *Source) LineCol(pos int) (line, col int) {
	if pos < 0 {
		pos = 0
	} else if pos > len(s.content) {
		pos = len(s.content)
	}

	lineIndex := sort.SearchInts(s.lineStarts, pos+1) - 1
	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

// Pos converts 1-based line and byte column to byte offset.
// Returns 0 for non-positive arguments and content length for positions beyond the end.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.content)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	}
	return res
}
