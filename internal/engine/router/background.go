package router

import (
	"context"
	"sync"

	"go.trai.ch/swcache/internal/core/ports"
)

const backgroundErrBuffer = 16

// background runs detached refresh tasks. Their errors go to a dedicated channel that is
// drained into the logger and never reach a response.
type background struct {
	logger ports.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	errs   chan error
	done   chan struct{}
}

func newBackground(logger ports.Logger) *background {
	b := &background{
		logger: logger,
		errs:   make(chan error, backgroundErrBuffer),
		done:   make(chan struct{}),
	}
	go b.drain()
	return b
}

// Go starts fn detached from the caller. The context keeps its values but not its
// cancellation. It reports false when the runner is already closed.
func (b *background) Go(ctx context.Context, fn func(ctx context.Context) error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}

	b.wg.Add(1)
	detached := context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		if err := fn(detached); err != nil {
			b.errs <- err
		}
	}()
	return true
}

// Wait blocks until every started task has finished.
func (b *background) Wait() {
	b.wg.Wait()
}

// Close waits for running tasks, then stops the drain goroutine.
func (b *background) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	close(b.errs)
	<-b.done
}

func (b *background) drain() {
	defer close(b.done)
	for err := range b.errs {
		b.logger.Error(err)
	}
}
