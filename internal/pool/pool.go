// Package pool provides the small fixed-size worker pool the proof
// orchestration schedules its search tasks on.
package pool

import (
	"context"
	"errors"
	"sync"
)

// ErrShutdown is returned when submitting to a pool that has shut down.
var ErrShutdown = errors.New("worker pool has been shut down")

// Pool runs submitted tasks on a fixed number of workers. Tasks are
// CPU-bound and never yield; cancellation is the task's own concern.
type Pool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// New starts a pool with the given number of workers.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks:    make(chan func(), workers),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			if task != nil {
				task()
			}
		case <-p.shutdown:
			return
		}
	}
}

// Submit hands a task to the pool, blocking until a worker slot frees up,
// ctx is done, or the pool shuts down.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	select {
	case <-p.shutdown:
		return ErrShutdown
	default:
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdown:
		return ErrShutdown
	}
}

// Shutdown stops the workers after their current task.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.shutdown)
	})
	p.wg.Wait()
}
