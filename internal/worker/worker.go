// ============================================================================
// Worker - Task Execution Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Each Worker runs in its own goroutine and executes tasks one at
//           a time until the task channel closes or the pool is aborted.
//
// Execution Model:
//   ┌─────────────────────────────────────┐
//   │  Worker Goroutine                   │
//   │  ┌──────────────────────────────┐   │
//   │  │ for {                        │   │
//   │  │   select taskCh / ctx.Done   │   │
//   │  │   ├─ handler(ctx, task)      │   │
//   │  │   └─ error → return (abort)  │   │
//   │  │ }                            │   │
//   │  └──────────────────────────────┘   │
//   └─────────────────────────────────────┘
//
// ============================================================================

package worker

import (
	"context"
)

// Worker represents a work execution unit
type Worker struct {
	id      int         // Worker identifier
	taskCh  <-chan Task // Task channel (read-only)
	handler Handler     // Business logic for one task
	pool    *Pool       // Owning pool, for in-flight accounting
}

// newWorker creates a new Worker instance
func newWorker(id int, taskCh <-chan Task, handler Handler, pool *Pool) *Worker {
	return &Worker{
		id:      id,
		taskCh:  taskCh,
		handler: handler,
		pool:    pool,
	}
}

// Run is the main loop of Worker. It returns nil when the task channel is
// closed, the handler's error when a task fails fatally, and the context
// error when another worker aborted the pool.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case task, ok := <-w.taskCh:
			if !ok {
				return nil
			}
			if err := w.execute(ctx, task); err != nil {
				return err
			}
		}
	}
}

// execute runs a single task with in-flight accounting
func (w *Worker) execute(ctx context.Context, task Task) error {
	w.pool.enter()
	defer w.pool.leave()

	return w.handler(ctx, task)
}
