// Package queue implements FIFO work queues used by grammar analysis passes.
package queue

const minSize = 3

// Queue is a ring buffer FIFO queue.
type Queue[T any] struct {
	items      []T
	size       int
	head, tail int
	zero       T
}

func New[T any](items ...T) *Queue[T] {
	l := len(items)
	q := &Queue[T]{tail: l, size: computeSize(l)}
	q.items = make([]T, q.size+1)
	copy(q.items, items)
	return q
}

func (q *Queue[T]) IsEmpty() bool {
	return q.head == q.tail
}

func (q *Queue[T]) Len() int {
	return (q.tail + q.size + 1 - q.head) & q.size
}

// Items returns queued items without removing them.
func (q *Queue[T]) Items() []T {
	res := make([]T, 0, q.Len())
	for i := q.head; i != q.tail; i = (i + 1) & q.size {
		res = append(res, q.items[i])
	}
	return res
}

func (q *Queue[T]) Append(items ...T) *Queue[T] {
	for _, item := range items {
		q.items[q.tail] = item
		q.tail = (q.tail + 1) & q.size
		if q.tail == q.head {
			q.grow()
		}
	}
	return q
}

// First removes and returns the head item, the flag is false if the queue is empty.
func (q *Queue[T]) First() (T, bool) {
	if q.head == q.tail {
		return q.zero, false
	}

	res := q.items[q.head]
	q.items[q.head] = q.zero
	q.head = (q.head + 1) & q.size
	return res, true
}

// computeSize returns 2^n - 1 capacity for length items.
func computeSize(length int) int {
	if length <= minSize {
		return minSize
	}

	length |= length >> 1
	length |= length >> 2
	length |= length >> 4
	length |= length >> 8
	length |= length >> 16
	return length | length>>32
}

func (q *Queue[T]) grow() {
	items := make([]T, (q.size+1)<<1)
	n := copy(items, q.items[q.head:])
	copy(items[n:], q.items[:q.head])
	q.head = 0
	q.tail = q.size + 1
	q.size = q.size + q.tail
	q.items = items
}

// Unique is a work queue accepting each item once during its lifetime.
type Unique[T comparable] struct {
	q    *Queue[T]
	seen map[T]bool
}

func NewUnique[T comparable](items ...T) *Unique[T] {
	u := &Unique[T]{q: New[T](), seen: make(map[T]bool)}
	u.Append(items...)
	return u
}

// Append queues items that were never queued before.
func (u *Unique[T]) Append(items ...T) *Unique[T] {
	for _, item := range items {
		if !u.seen[item] {
			u.seen[item] = true
			u.q.Append(item)
		}
	}
	return u
}

func (u *Unique[T]) First() (T, bool) {
	return u.q.First()
}

// Seen reports whether item was ever queued.
func (u *Unique[T]) Seen(item T) bool {
	return u.seen[item]
}
