package ints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddContains(t *testing.T) {
	s := NewSet(3, 70, 3, -1)
	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(70))
	assert.False(t, s.Contains(4))
	assert.False(t, s.Contains(-1))
	assert.False(t, s.Contains(1000))
	assert.Equal(t, 2, s.Len())

	var zero Set
	assert.True(t, zero.IsEmpty())
	assert.False(t, zero.Contains(0))
	zero.Add(0)
	assert.True(t, zero.Contains(0))
}

func TestUnion(t *testing.T) {
	s := NewSet(1, 2)
	s.Union(NewSet(2, 130))
	assert.Equal(t, []int{1, 2, 130}, s.Items())

	empty := NewSet()
	empty.Union(NewSet())
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, []int{}, empty.Items())
}

func TestItems(t *testing.T) {
	items := []int{0, 1, 63, 64, 65, 127, 128, 200}
	assert.Equal(t, items, NewSet(200, 128, 127, 65, 64, 63, 1, 0).Items())
}
