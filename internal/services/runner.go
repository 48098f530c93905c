package services

import (
	"context"
	"log"
	"sync"
)

// Runner supervises background tasks spawned by request handlers. A
// panicking task is logged instead of taking the process down, and Wait
// lets shutdown drain running ingestions.
type Runner struct {
	wg sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Go runs fn on its own goroutine. Errors and panics end up in the log
// under the task name.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("ERROR: task %s panicked: %v", name, rec)
			}
		}()
		if err := fn(ctx); err != nil {
			log.Printf("ERROR: task %s: %v", name, err)
		}
	}()
}

func (r *Runner) Wait() {
	r.wg.Wait()
}
