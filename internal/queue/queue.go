// Package queue provides a growable FIFO queue.
package queue

const minCap = 4

// Queue is a ring buffer, its capacity is always a power of two.
type Queue[T any] struct {
	items      []T
	head, size int
}

func New[T any](items ...T) *Queue[T] {
	c := minCap
	for c < len(items) {
		c <<= 1
	}
	q := &Queue[T]{items: make([]T, c)}
	return q.Push(items...)
}

func (q *Queue[T]) Len() int {
	return q.size
}

func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

// Push appends items to the tail.
func (q *Queue[T]) Push(items ...T) *Queue[T] {
	for _, item := range items {
		if q.size == len(q.items) {
			q.grow()
		}
		q.items[(q.head+q.size)&(len(q.items)-1)] = item
		q.size++
	}
	return q
}

// Pop removes and returns the head item, false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}

	res := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) & (len(q.items) - 1)
	q.size--
	return res, true
}

func (q *Queue[T]) grow() {
	items := make([]T, len(q.items)<<1)
	n := copy(items, q.items[q.head:])
	copy(items[n:], q.items[:q.head])
	q.items = items
	q.head = 0
}
