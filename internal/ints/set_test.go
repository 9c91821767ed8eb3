package ints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddContains(t *testing.T) {
	s := NewSet(1, 5, 64, 200)
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(64))
	assert.True(t, s.Contains(200))
	assert.False(t, s.Contains(2))
	assert.False(t, s.Contains(1000))
	assert.False(t, s.Contains(-1))
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []int{1, 5, 64, 200}, s.ToSlice())
}

func TestRemove(t *testing.T) {
	s := NewSet[uint8](3, 4, 5)
	s.Remove(4, 100)
	assert.Equal(t, []uint8{3, 5}, s.ToSlice())
	s.Remove(3, 5)
	assert.True(t, s.IsEmpty())
}

func TestUnion(t *testing.T) {
	s := NewSet(1, 2)
	assert.True(t, s.Union(NewSet(2, 130)))
	assert.False(t, s.Union(NewSet(1)))
	assert.Equal(t, []int{1, 2, 130}, s.ToSlice())
}

func TestCopyAndEqual(t *testing.T) {
	s := NewSet(7, 70)
	c := s.Copy()
	c.Add(8)
	assert.False(t, s.Contains(8))
	assert.False(t, s.IsEqual(c))
	c.Remove(8)
	assert.True(t, s.IsEqual(c))
	assert.True(t, NewSet[int]().IsEqual(NewSet(300).Remove(300)))
}
