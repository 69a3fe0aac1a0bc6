// Package ints provides a set of small non-negative integers, such as rule indexes.
package ints

import "math/bits"

const wordBits = 64

// Set is a bit set, zero value is an empty set.
type Set struct {
	words []uint64
}

func NewSet(items ...int) *Set {
	return new(Set).Add(items...)
}

// Add inserts items, negative items are ignored.
func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		if item < 0 {
			continue
		}

		w := item / wordBits
		if w >= len(s.words) {
			s.words = append(s.words, make([]uint64, w+1-len(s.words))...)
		}
		s.words[w] |= 1 << (item % wordBits)
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 || item/wordBits >= len(s.words) {
		return false
	}
	return s.words[item/wordBits]&(1<<(item%wordBits)) != 0
}

// Union adds all items of t to s.
func (s *Set) Union(t *Set) *Set {
	if len(t.words) > len(s.words) {
		s.words = append(s.words, make([]uint64, len(t.words)-len(s.words))...)
	}
	for i, w := range t.words {
		s.words[i] |= w
	}
	return s
}

func (s *Set) Len() int {
	res := 0
	for _, w := range s.words {
		res += bits.OnesCount64(w)
	}
	return res
}

func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Items returns set items in ascending order.
func (s *Set) Items() []int {
	res := make([]int, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			res = append(res, i*wordBits+bit)
			w &= w - 1
		}
	}
	return res
}
