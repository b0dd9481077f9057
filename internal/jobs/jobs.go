// Package jobs provides the background execution queue for letter
// processing. The queue is an interface so handlers and services can be
// tested with synchronous execution.
package jobs

import (
	"context"
	"log/slog"
	"sync"
)

// Queue accepts work to run outside the request cycle.
type Queue interface {
	Submit(task func(ctx context.Context))
}

// Runner executes submitted tasks on their own goroutines. Tasks run
// against a base context that survives the submitting request, and a
// panic in one task never takes down the process.
type Runner struct {
	base context.Context
	wg   sync.WaitGroup
}

func NewRunner(base context.Context) *Runner {
	return &Runner{base: base}
}

func (r *Runner) Submit(task func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Background task panicked", "panic", rec)
			}
		}()
		task(r.base)
	}()
}

// Wait blocks until all submitted tasks have finished. Used during
// shutdown so in-flight letter requests reach a terminal state.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Inline runs each task immediately on the calling goroutine.
type Inline struct{}

func (Inline) Submit(task func(ctx context.Context)) {
	task(context.Background())
}
