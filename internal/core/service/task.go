package service

import (
	"context"
	"sync"
)

// Task is a handle on one operation running in its own goroutine.
//
// Cancel aborts the operation; a cancelled task completes with
// domain.ErrCanceled.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	value T
	err   error
}

// startTask runs fn with a context derived from parent. after, when
// non-nil, runs once fn has returned and before Done is closed.
func startTask[T any](parent context.Context, fn func(ctx context.Context) (T, error), after func()) *Task[T] {
	ctx, cancel := context.WithCancel(parent)
	t := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()
		t.value, t.err = fn(ctx)
		if after != nil {
			after()
		}
	}()

	return t
}

// failedTask returns an already completed task.
func failedTask[T any](err error) *Task[T] {
	t := &Task[T]{
		cancel: func() {},
		done:   make(chan struct{}),
		err:    err,
	}
	close(t.done)
	return t
}

// Cancel aborts the operation. It is safe to call more than once and
// after completion.
func (t *Task[T]) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed when the operation has finished.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the operation finishes and returns its result.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.value, t.err
}
