package util

import "sync"

// Queue is just a basic FIFO container that automatically removes the oldest element
// whenever it becomes full. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	data    []string
	maxSize int
}

func NewQueue(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Queue{
		data:    make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

func (q *Queue) Push(item string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = append(q.data, item)
	if len(q.data) > q.maxSize {
		q.data = q.data[1:]
	}
}

// Items returns the retained elements, oldest first.
func (q *Queue) Items() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.data))
	copy(out, q.data)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}
