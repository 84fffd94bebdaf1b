package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitIdle(t *testing.T, s *Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitIdle(ctx))
}

func TestTasksRunInOrderWithoutOverlap(t *testing.T) {
	s := New(time.Millisecond)
	defer s.Close()

	var mu sync.Mutex
	var order []int
	var running int32
	overlapped := false

	for i := 0; i < 20; i++ {
		i := i
		s.Enqueue(fmt.Sprintf("task-%d", i), func(ctx context.Context) error {
			if atomic.AddInt32(&running, 1) != 1 {
				overlapped = true
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&running, -1)
			return nil
		})
	}
	waitIdle(t, s)

	expected := make([]int, 20)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, order)
	assert.False(t, overlapped)
}

func TestFailedTasksDoNotStallQueue(t *testing.T) {
	s := New(0)
	defer s.Close()

	var ran []string
	s.Enqueue("fails", func(ctx context.Context) error {
		ran = append(ran, "fails")
		return errors.New("animation failed")
	})
	s.Enqueue("panics", func(ctx context.Context) error {
		ran = append(ran, "panics")
		panic("boom")
	})
	s.Enqueue("ok", func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})
	waitIdle(t, s)

	assert.Equal(t, []string{"fails", "panics", "ok"}, ran)
}

func TestEnqueueFromTask(t *testing.T) {
	s := New(0)
	defer s.Close()

	done := make(chan struct{})
	s.Enqueue("outer", func(ctx context.Context) error {
		s.Enqueue("inner", func(ctx context.Context) error {
			close(done)
			return nil
		})
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task enqueued from a running task never ran")
	}
}

func TestClearDropsPendingTasks(t *testing.T) {
	s := New(0)
	defer s.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	var ranLater int32
	s.Enqueue("blocking", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	for i := 0; i < 3; i++ {
		s.Enqueue("later", func(ctx context.Context) error {
			atomic.AddInt32(&ranLater, 1)
			return nil
		})
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Clear())

	var after int32
	s.Enqueue("after-clear", func(ctx context.Context) error {
		atomic.AddInt32(&after, 1)
		return nil
	})
	close(release)
	waitIdle(t, s)

	assert.Equal(t, int32(0), atomic.LoadInt32(&ranLater))
	assert.Equal(t, int32(1), atomic.LoadInt32(&after))
}

func TestWaitIdleRespectsContext(t *testing.T) {
	s := New(0)
	defer s.Close()

	release := make(chan struct{})
	s.Enqueue("blocking", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, s.WaitIdle(ctx))

	close(release)
	waitIdle(t, s)
}

func TestWaitIdleOnEmptyScheduler(t *testing.T) {
	s := New(time.Second)
	defer s.Close()
	waitIdle(t, s)
}

func TestCloseCancelsRunningTask(t *testing.T) {
	s := New(0)

	started := make(chan struct{})
	s.Enqueue("sleeper", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	s.Close()
	waitIdle(t, s)

	var ran bool
	s.Enqueue("after-close", func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.Equal(t, 0, s.Len())
	assert.False(t, ran)
}
