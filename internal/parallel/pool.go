// Package parallel provides the worker pool and row scheduler behind
// pix's pixel processors.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines for row-parallel pixel work.
//
// Work items are pulled from a single shared queue; row ranges are
// uniform enough that per-worker queues and work stealing buy nothing.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool creates a new pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &Pool{
		workers: workers,
		queue:   make(chan func(), queueSize),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			p.drain()
			return
		case work := <-p.queue:
			if work != nil {
				work()
			}
		}
	}
}

// drain executes all remaining queued work.
func (p *Pool) drain() {
	for {
		select {
		case work := <-p.queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// ExecuteAll distributes work across workers and waits for all items to
// complete. If the pool is closed, ExecuteAll is a no-op.
func (p *Pool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var completion sync.WaitGroup
	completion.Add(len(work))

	for _, fn := range work {
		workFn := fn
		wrapped := func() {
			defer completion.Done()
			workFn()
		}

		select {
		case p.queue <- wrapped:
		case <-p.done:
			completion.Done()
		}
	}

	completion.Wait()
}

// Close gracefully shuts down the pool: it stops accepting new work,
// lets queued work finish, and stops all workers.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// IsRunning returns true if the pool is still accepting work.
func (p *Pool) IsRunning() bool { return p.running.Load() }
