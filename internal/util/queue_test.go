package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue(2)
	q.Push("a")
	q.Push("b")
	q.Push("c")
	assert.Equal(t, []string{"b", "c"}, q.Items())
	assert.Equal(t, 2, q.Len())

	items := q.Items()
	items[0] = "x"
	assert.Equal(t, []string{"b", "c"}, q.Items())
}

func TestQueueMinimumSize(t *testing.T) {
	q := NewQueue(0)
	q.Push("a")
	q.Push("b")
	assert.Equal(t, []string{"b"}, q.Items())
}
