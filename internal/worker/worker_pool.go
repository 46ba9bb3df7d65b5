// ============================================================================
// Worker Pool - bounded concurrent task executor
// ============================================================================
//
// Package: internal/worker
// File: worker_pool.go
// Function: Run at most N tasks at a time, apply backpressure to the
//           producer, and drain every submitted task before returning.
//
// Architecture:
//   ┌─────────────┐
//   │ Dispatcher  │ --Submit()--> taskCh (unbuffered)
//   └─────────────┘
//                       │
//   ┌───────────────────▼─┐
//   │   Pool (errgroup)   │
//   │  ┌────────┐         │
//   │  │Worker 1│←── taskCh
//   │  │Worker 2│←── taskCh
//   │  │Worker N│←── taskCh
//   │  └────────┘         │
//   └─────────────────────┘
//
// Lifecycle:
//   1. NewPool(handler)    - create pool
//   2. Start(ctx, n)       - launch n workers in an errgroup
//   3. Submit(task)        - blocks until a worker takes the task
//   4. Stop()              - close taskCh, wait for all workers, return
//                            the first fatal handler error
//
// Backpressure:
//   taskCh is unbuffered, so Submit only returns once a worker has picked
//   the task up. With all N workers busy the producer waits; nothing queues.
//
// Abort:
//   A handler error cancels the errgroup context. Idle workers exit, Submit
//   returns ErrPoolAborted, and in-flight handlers observe ctx.Done().
//
// Submit and Stop must be called from the same goroutine (the dispatcher).
//
// ============================================================================

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolClosed indicates the pool has been stopped
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolNotStarted indicates Submit was called before Start
	ErrPoolNotStarted = errors.New("worker pool not started")
	// ErrPoolAborted indicates a worker failed fatally; the cause is returned by Stop
	ErrPoolAborted = errors.New("worker pool aborted")
)

// Pool manages a fixed set of Workers
type Pool struct {
	handler Handler
	taskCh  chan Task
	group   *errgroup.Group
	ctx     context.Context
	workers []*Worker
	started bool
	stopped bool
	mu      sync.Mutex

	inFlight  atomic.Int64
	peak      atomic.Int64
	submitted atomic.Int64
}

// NewPool creates a pool that runs handler for every submitted task
func NewPool(handler Handler) *Pool {
	return &Pool{
		handler: handler,
		taskCh:  make(chan Task),
	}
}

// Start launches workerCount workers. A non-positive count starts one.
func (p *Pool) Start(ctx context.Context, workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("pool already started")
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	p.group, p.ctx = errgroup.WithContext(ctx)
	for i := 0; i < workerCount; i++ {
		w := newWorker(i, p.taskCh, p.handler, p)
		p.workers = append(p.workers, w)
		p.group.Go(func() error {
			return w.Run(p.ctx)
		})
	}

	p.started = true
	return nil
}

// Submit hands task to the next free worker, blocking while all are busy
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrPoolNotStarted
	}
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	ctx := p.ctx
	p.mu.Unlock()

	// Check abort first so a dead pool never accepts more work
	if ctx.Err() != nil {
		return ErrPoolAborted
	}

	select {
	case p.taskCh <- task:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ErrPoolAborted
	}
}

// Stop closes the task channel and waits for every worker to finish.
// It returns the first fatal handler error, if any.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.taskCh)
	return p.group.Wait()
}

// Aborted is closed once a worker has failed fatally (or the parent context ended)
func (p *Pool) Aborted() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil {
		return nil
	}
	return p.ctx.Done()
}

// GetWorkerCount returns the number of started workers
func (p *Pool) GetWorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// IsStarted reports whether Start has been called
func (p *Pool) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// InFlight returns the number of tasks currently inside a handler
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// PeakInFlight returns the highest concurrent task count observed
func (p *Pool) PeakInFlight() int {
	return int(p.peak.Load())
}

// Submitted returns how many tasks were accepted by Submit
func (p *Pool) Submitted() int {
	return int(p.submitted.Load())
}

func (p *Pool) enter() {
	n := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (p *Pool) leave() {
	p.inFlight.Add(-1)
}
