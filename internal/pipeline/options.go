package pipeline

import (
	"io"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/stage"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

// Option configures a Controller.
type Option func(*controllerConfig)

// WithWorkers sets the fan-out worker count. Values <= 0 become 1.
func WithWorkers(n int) Option {
	return func(c *controllerConfig) {
		c.workers = n
	}
}

// WithRunner replaces the shell runner used for every external program.
func WithRunner(r command.Runner) Option {
	return func(c *controllerConfig) {
		c.runner = r
	}
}

// WithLogger sets the run logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *controllerConfig) {
		c.logger = l
	}
}

// WithOutput sets where operator-facing progress lines are printed
// (default: os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(c *controllerConfig) {
		c.out = w
	}
}

// StageFactory builds the stage chain for a run.
type StageFactory func(runner command.Runner, pool *taskpool.Pool, logger *logging.Logger) []stage.Stage

// WithStages replaces the NetProphet stages, typically with test stages.
func WithStages(f StageFactory) Option {
	return func(c *controllerConfig) {
		c.stages = f
	}
}
