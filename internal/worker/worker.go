package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrShutdownTimeout is returned by Shutdown when tasks outlive the timeout.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Pool manages the long-running goroutines of the process: servers and
// background loops. The first task to fail cancels the others.
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

// NewPool creates a new worker pool bound to parent
func NewPool(parent context.Context, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit runs a named task and tracks it. A non-nil error that is not caused
// by the pool stopping cancels the pool.
func (p *Pool) Submit(name string, task func(ctx context.Context) error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		err := task(p.ctx)
		if err == nil || (p.ctx.Err() != nil && errors.Is(err, context.Canceled)) {
			p.logger.Debug("✅ [Worker] Task finished", "task", name)
			return
		}

		p.logger.Error("❌ [Worker] Task failed, stopping pool", "task", name, "error", err)
		p.mu.Lock()
		if p.err == nil {
			p.err = err
		}
		p.mu.Unlock()
		p.cancel()
	}()
}

// Every runs fn immediately and then on each tick until the pool stops.
func (p *Pool) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	p.Submit(name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			fn(ctx)
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}

// Context returns the pool's context
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Done is closed once the pool has been told to stop.
func (p *Pool) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Err returns the first task failure, if any.
func (p *Pool) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Shutdown signals all workers to stop and waits for completion. It returns
// the first task failure or ErrShutdownTimeout.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	// Signal all workers to stop
	p.cancel()

	// Wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
		return p.Err()
	case <-timer.C:
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
		return ErrShutdownTimeout
	}
}
