package taskpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// ProgressFunc is called after every finished task with the number of
// finished tasks and the batch size. It may be called from several
// goroutines, but calls never overlap and done is strictly increasing.
type ProgressFunc func(done, total int)

// Option configures a Pool.
type Option func(*Pool)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pool) {
		p.onProgress = fn
	}
}

// Pool runs command lines with at most Workers concurrent children.
type Pool struct {
	runner     command.Runner
	workers    int
	onProgress ProgressFunc
}

// New creates a Pool. A workers value <= 0 is normalized to 1.
func New(runner command.Runner, workers int, opts ...Option) *Pool {
	p := &Pool{
		runner:  runner,
		workers: NormalizeWorkers(workers),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeWorkers returns n, or 1 when n <= 0.
func NormalizeWorkers(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// Workers returns the effective worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// WithProgressFunc returns a copy of p that reports to fn. The copy shares
// the runner and worker count.
func (p *Pool) WithProgressFunc(fn ProgressFunc) *Pool {
	return &Pool{runner: p.runner, workers: p.workers, onProgress: fn}
}

// RunAll runs every task and blocks until the batch completes or fails.
// Tasks run in no defined order. The returned error is nil or a
// *errors.BatchFailure whose First field is the first failure observed.
func (p *Pool) RunAll(ctx context.Context, tasks []string) error {
	total := len(tasks)
	if total == 0 {
		return nil
	}

	var (
		g       errgroup.Group
		stopped atomic.Bool
		mu      sync.Mutex // guards done, failed, first and onProgress calls
		done    int
		failed  int
		first   error
	)
	g.SetLimit(p.workers)

	for i, task := range tasks {
		// Go blocks while all workers are busy, so this check gates the
		// queue: nothing new starts once a failure has been seen.
		if stopped.Load() {
			break
		}
		g.Go(func() error {
			if stopped.Load() {
				return nil
			}

			err := p.runner.Run(ctx, task)
			if err != nil {
				stopped.Store(true)
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				failed++
				if first == nil {
					first = fmt.Errorf("task %d: %w", i, err)
				}
			}
			if p.onProgress != nil {
				p.onProgress(done, total)
			}
			return err
		})
	}

	// Wait only returns after every started goroutine has returned.
	_ = g.Wait()

	if first != nil {
		return errors.NewBatchFailure(failed, total, first)
	}
	return nil
}
