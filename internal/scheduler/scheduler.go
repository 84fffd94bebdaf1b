package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voyager.com/cardclient/internal/util"
	"voyager.com/cardclient/logging"
)

var schedulerLogger = logging.GetZeroLogger("scheduler::queue", nil)

// Task is one unit of presentation work. The context is only cancelled when
// the scheduler is closed.
type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Scheduler runs tasks one at a time in the order they were enqueued, waiting
// a fixed delay after each one.
type Scheduler struct {
	logger *zerolog.Logger
	delay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  []job
	draining bool
	closed   bool
	// closed whenever no drain goroutine is running
	idle chan struct{}
}

func New(delay time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	return &Scheduler{
		logger: schedulerLogger,
		delay:  delay,
		ctx:    ctx,
		cancel: cancel,
		idle:   idle,
	}
}

// Enqueue appends a task and returns immediately. The drain goroutine is
// started if it is not already running.
func (s *Scheduler) Enqueue(name string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn().Str(logging.TaskNameKey, name).Msg("Scheduler is closed. Dropping task.")
		return
	}
	s.pending = append(s.pending, job{name: name, task: task})
	util.Metrics.SetPresentationQueueDepth(len(s.pending))
	if s.draining {
		return
	}
	s.draining = true
	s.idle = make(chan struct{})
	go s.drain()
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 || s.closed {
			s.draining = false
			close(s.idle)
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending[0] = job{}
		s.pending = s.pending[1:]
		util.Metrics.SetPresentationQueueDepth(len(s.pending))
		s.mu.Unlock()

		if err := s.run(next); err != nil {
			util.Metrics.PresentationFailure()
			s.logger.Error().Err(err).Str(logging.TaskNameKey, next.name).Msg("Presentation task failed.")
		}

		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			select {
			case <-t.C:
			case <-s.ctx.Done():
				t.Stop()
			}
		}
	}
}

func (s *Scheduler) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	util.Metrics.PresentationTaskRun()
	s.logger.Debug().Str(logging.TaskNameKey, j.name).Msg("Running task.")
	return errors.Wrapf(j.task(s.ctx), "task %s", j.name)
}

// Clear drops every task that has not started yet and returns how many were
// dropped. A running task is not interrupted.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	s.pending = nil
	util.Metrics.SetPresentationQueueDepth(0)
	if n > 0 {
		s.logger.Debug().Msgf("Dropped %d pending tasks.", n)
	}
	return n
}

// Len is the number of tasks waiting to run.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// WaitIdle blocks until the queue has drained or ctx is done.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the drain goroutine after the running task returns. Pending
// tasks are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()
	s.cancel()
}
