// Package ints implements a bit set of small non-negative integers.
package ints

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

const chunkShift = 6
const chunkSize = 1 << chunkShift

// Set is a set of non-negative integers, e.g. rule or mode indexes.
// Negative items are ignored.
type Set[T constraints.Integer] struct {
	chunks []uint64
}

func NewSet[T constraints.Integer](items ...T) *Set[T] {
	return (&Set[T]{}).Add(items...)
}

func (s *Set[T]) allocate(item T) {
	n := int(item>>chunkShift) + 1
	if n > len(s.chunks) {
		chunks := make([]uint64, n)
		copy(chunks, s.chunks)
		s.chunks = chunks
	}
}

func bitMask[T constraints.Integer](item T) uint64 {
	return 1 << (uint64(item) & (chunkSize - 1))
}

func (s *Set[T]) Add(items ...T) *Set[T] {
	for _, item := range items {
		if item < 0 {
			continue
		}
		s.allocate(item)
		s.chunks[item>>chunkShift] |= bitMask(item)
	}
	return s
}

func (s *Set[T]) Remove(items ...T) *Set[T] {
	for _, item := range items {
		if s.Contains(item) {
			s.chunks[item>>chunkShift] &^= bitMask(item)
		}
	}
	return s
}

func (s *Set[T]) Contains(item T) bool {
	if item < 0 || int(item>>chunkShift) >= len(s.chunks) {
		return false
	}
	return s.chunks[item>>chunkShift]&bitMask(item) != 0
}

func (s *Set[T]) Copy() *Set[T] {
	chunks := make([]uint64, len(s.chunks))
	copy(chunks, s.chunks)
	return &Set[T]{chunks}
}

func (s *Set[T]) Len() int {
	res := 0
	for _, chunk := range s.chunks {
		res += bits.OnesCount64(chunk)
	}
	return res
}

func (s *Set[T]) IsEmpty() bool {
	for _, chunk := range s.chunks {
		if chunk != 0 {
			return false
		}
	}
	return true
}

// ToSlice returns set items in ascending order.
func (s *Set[T]) ToSlice() []T {
	res := make([]T, 0, s.Len())
	for i, chunk := range s.chunks {
		for chunk != 0 {
			bit := bits.TrailingZeros64(chunk)
			res = append(res, T(i<<chunkShift+bit))
			chunk &= chunk - 1
		}
	}
	return res
}

// Union adds all items of t to s and reports whether s has changed.
func (s *Set[T]) Union(t *Set[T]) bool {
	changed := false
	if len(t.chunks) > len(s.chunks) {
		s.allocate(T(len(t.chunks)<<chunkShift - 1))
	}
	for i, chunk := range t.chunks {
		merged := s.chunks[i] | chunk
		if merged != s.chunks[i] {
			s.chunks[i] = merged
			changed = true
		}
	}
	return changed
}

func (s *Set[T]) IsEqual(t *Set[T]) bool {
	short, long := s.chunks, t.chunks
	if len(short) > len(long) {
		short, long = long, short
	}
	for i, chunk := range short {
		if chunk != long[i] {
			return false
		}
	}
	for _, chunk := range long[len(short):] {
		if chunk != 0 {
			return false
		}
	}
	return true
}
