// Package shutdown coordinates process termination for kci binaries.
//
// CLI commands use SignalContext so that Ctrl-C cancels an in-flight
// request. Long-running processes such as kci-fakeapi register cleanup
// hooks on a Handler and block in Wait.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Signals are the termination signals handled by this package.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SignalContext returns a context cancelled on the first SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// NewHandler creates a new shutdown handler. timeout bounds the total
// time given to hooks.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Wait blocks until a termination signal arrives or ctx is done, then
// runs the hooks. All hook errors are joined.
func (h *Handler) Wait(ctx context.Context) error {
	sigCtx, stop := SignalContext(ctx)
	<-sigCtx.Done()
	stop()

	return h.Shutdown()
}

// Shutdown runs the registered hooks once. Later calls return nil.
func (h *Handler) Shutdown() error {
	var err error
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]func(context.Context) error, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if hookErr := hooks[i](ctx); hookErr != nil {
				errs = append(errs, hookErr)
			}
		}
		err = errors.Join(errs...)
		close(h.done)
	})
	return err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
