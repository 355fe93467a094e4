package stage

import (
	"context"
	"fmt"
	"os"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

// Setup returns a body that creates every directory in dirs. Existing
// directories are not an error.
func Setup(dirs ...string) Body {
	return func(ctx context.Context) error {
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
		return nil
	}
}

// Single returns a body that runs one command line and then each post
// step in order. Post steps only run when the command succeeded.
func Single(runner command.Runner, line string, post ...func() error) Body {
	return func(ctx context.Context) error {
		if err := runner.Run(ctx, line); err != nil {
			return err
		}
		for _, p := range post {
			if err := p(); err != nil {
				return fmt.Errorf("post-process: %w", err)
			}
		}
		return nil
	}
}

// Composite returns a body that runs bodies in sequence and stops at the
// first failure. The whole sequence is gated by one stage number.
func Composite(bodies ...Body) Body {
	return func(ctx context.Context) error {
		for i, b := range bodies {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b(ctx); err != nil {
				return fmt.Errorf("step %d of %d: %w", i+1, len(bodies), err)
			}
		}
		return nil
	}
}

// Batch is one set of independent tasks within a fan-out stage. Tasks is
// called only when the batch is about to start, so it may read files that
// earlier batches produced. The returned order must be deterministic.
type Batch struct {
	Name  string
	Tasks func() ([]string, error)
}

// NewBatch creates a Batch.
func NewBatch(name string, tasks func() ([]string, error)) Batch {
	return Batch{Name: name, Tasks: tasks}
}

// FanOut returns a body that runs batches one after another through pool.
// Batch N+1 starts only after every task of batch N finished successfully;
// any task failure aborts the stage.
func FanOut(pool *taskpool.Pool, logger *logging.Logger, batches ...Batch) Body {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return func(ctx context.Context) error {
		for i, b := range batches {
			log := logger.WithBatch(i).With("batch_name", b.Name)

			tasks, err := b.Tasks()
			if err != nil {
				return fmt.Errorf("batch %s: build tasks: %w", b.Name, err)
			}
			if len(tasks) == 0 {
				log.Warn("batch has no tasks")
				continue
			}

			log.Info("batch started", "tasks", len(tasks), "workers", pool.Workers())
			for _, t := range tasks {
				log.Debug("task queued", "command", t)
			}

			p := pool.WithProgressFunc(func(done, total int) {
				log.Info("batch progress", "done", done, "total", total)
			})
			if err := p.RunAll(ctx, tasks); err != nil {
				return fmt.Errorf("batch %s: %w", b.Name, err)
			}
		}
		return nil
	}
}

// Tasks is a convenience for a Batch whose task list is known up front.
func Tasks(tasks ...string) func() ([]string, error) {
	return func() ([]string, error) {
		return tasks, nil
	}
}
