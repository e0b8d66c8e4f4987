package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
)

// ErrClosed is returned by Go once Wait has been called.
var ErrClosed = errors.New("goroutine manager is closed")

// Manager runs functions in goroutines with a concurrency limit.
//
// Errors returned by tasks, and panics recovered from them, are collected and
// returned joined by Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager running at most maxGoroutine tasks at once.
// A non-positive limit defaults to runtime.NumCPU().
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU()
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f, blocking until a slot is free or ctx is done.
//
// It returns ctx.Err() when the context ends before f starts, and ErrClosed
// after Wait. A nil return means f has been started.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) error {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		return ErrClosed
	}

	select {
	case g.sema <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(debug.Stack()))
				g.record(fmt.Errorf("goroutine panic: %v", rvr))
			}
		}()

		if err := f(ctx); err != nil {
			g.record(err)
		}
	})

	return nil
}

// Wait closes the manager, blocks until all started tasks finish, and returns
// the collected errors.
func (g *Manager) Wait() error {
	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}
