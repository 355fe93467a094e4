package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/config"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/netprophet"
	"github.com/ygidtu/NetProphet-2.0/internal/progress"
	"github.com/ygidtu/NetProphet-2.0/internal/stage"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

// Controller drives the stage chain of one run directory.
//
// A Controller is not safe for concurrent use. Separate processes are kept
// apart by the run lock.
type Controller struct {
	cfg     *config.Resolved
	store   *progress.Store
	lock    *progress.RunLock
	stages  []stage.Stage
	build   func(*logging.Logger) []stage.Stage
	workers int
	logger  *logging.Logger
	out     io.Writer
}

// New creates a Controller bound to cfg. Nothing is read or written until
// Run, Status or Reset is called.
func New(cfg *config.Resolved, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}

	cc := &controllerConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	if cc.logger == nil {
		cc.logger = logging.NopLogger()
	}
	if cc.out == nil {
		cc.out = os.Stdout
	}
	if cc.runner == nil {
		cc.runner = command.NewShellRunner(cfg.RootDir)
	}

	workers := taskpool.NormalizeWorkers(cc.workers)
	pool := taskpool.New(cc.runner, workers)

	factory := cc.stages
	if factory == nil {
		factory = func(runner command.Runner, pool *taskpool.Pool, logger *logging.Logger) []stage.Stage {
			return netprophet.Build(cfg, runner, pool, logger)
		}
	}
	build := func(logger *logging.Logger) []stage.Stage {
		return factory(cc.runner, pool, logger)
	}

	stages := build(cc.logger)
	if len(stages) == 0 {
		return nil, errors.New("pipeline: no stages")
	}

	return &Controller{
		cfg:     cfg,
		store:   progress.Open(cfg.ProgressDir()),
		lock:    progress.NewRunLock(cfg.ProgressDir()),
		stages:  stages,
		build:   build,
		workers: workers,
		logger:  cc.logger,
		out:     cc.out,
	}, nil
}

// Workers returns the effective fan-out worker count.
func (c *Controller) Workers() int {
	return c.workers
}

// Stages returns the stage chain in order.
func (c *Controller) Stages() []stage.Stage {
	return append([]stage.Stage(nil), c.stages...)
}

// Run invokes stages 1..K in order and stops at the first failure. The
// returned error is a *errors.StageError or *errors.PrerequisiteError
// naming the failing stage, or a lock or progress error raised before any
// stage ran.
func (c *Controller) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := c.logger.WithRun(runID)

	if err := c.lock.TryLock(); err != nil {
		log.Error("cannot acquire run lock", "error", err.Error())
		return err
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			log.Warn("failed to release run lock", "error", err.Error())
		}
	}()

	// Rebuilt so that batch logs carry the run ID.
	chain, err := stage.NewChain(c.store, c.build(log),
		stage.WithLogger(log),
		stage.WithObserver(c.print),
	)
	if err != nil {
		return err
	}

	summary, err := c.summarize()
	if err != nil {
		log.Error("cannot read progress", "path", c.store.Path(), "error", err.Error())
		return err
	}
	if summary.Done() {
		fmt.Fprintf(c.out, "All %d stages are already complete. Clear the progress record with `netprophet reset` to run again.\n", len(c.stages))
		log.Info("all stages already complete", "progress", c.store.Path())
	}

	log.Info("run started",
		"stages", len(c.stages),
		"completed", summary.Completed,
		"workers", c.workers,
		"progress", c.store.Path(),
	)
	start := time.Now()

	if err := chain.RunAll(ctx); err != nil {
		log.Error("run failed",
			"stage", errors.FailedStage(err),
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	log.Info("run complete", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// print writes one operator-facing line per stage transition.
func (c *Controller) print(e stage.Event) {
	prefix := fmt.Sprintf("[%d/%d] %s", e.Stage, e.Total, e.Name)
	switch e.State {
	case stage.StateSkipped:
		fmt.Fprintf(c.out, "%s: already complete, skipping\n", prefix)
	case stage.StateRunning:
		fmt.Fprintf(c.out, "%s: running\n", prefix)
	case stage.StateComplete:
		fmt.Fprintf(c.out, "%s: complete (%s)\n", prefix, e.Duration.Round(time.Millisecond))
	case stage.StateFailed:
		fmt.Fprintf(c.out, "%s: failed\n", prefix)
	}
}

// Status returns the persisted state of every stage.
func (c *Controller) Status() (Summary, error) {
	return c.summarize()
}

func (c *Controller) summarize() (Summary, error) {
	done, err := c.store.Completed()
	if err != nil {
		return Summary{}, err
	}
	complete := make(map[int]bool, len(done))
	for _, id := range done {
		complete[id] = true
	}

	s := Summary{Stages: make([]StageStatus, len(c.stages))}
	for i, st := range c.stages {
		s.Stages[i] = StageStatus{ID: st.ID, Name: st.Name, Complete: complete[st.ID]}
		if complete[st.ID] {
			s.Completed++
		} else if s.Next == 0 {
			s.Next = st.ID
		}
	}
	return s, nil
}

// Reset clears stages >= from from the progress record so that the next
// Run executes them again. Reset(1) clears the record entirely. Reset fails
// while a run holds the lock.
func (c *Controller) Reset(from int) error {
	if from < 1 || from > len(c.stages) {
		return errors.Wrapf(errors.ErrUnknownStage, "reset from stage %d (valid: 1..%d)", from, len(c.stages))
	}

	if err := c.lock.TryLock(); err != nil {
		return err
	}
	defer func() { _ = c.lock.Unlock() }()

	if err := c.store.Reset(from); err != nil {
		return err
	}
	c.logger.Info("progress reset", "from", from, "progress", c.store.Path())
	return nil
}

// Run loads the config at configPath and runs the whole chain with the
// given worker count. It returns the process exit status: 0 on success, 1 on
// a configuration error or any stage failure. Errors are reported on stderr.
func Run(configPath string, workers int) int {
	return run(configPath, workers, os.Stdout, os.Stderr)
}

func run(configPath string, workers int, stdout, stderr io.Writer) int {
	err := runConfigPath(configPath, workers, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return errors.ExitCode(err)
}

func runConfigPath(configPath string, workers int, stdout io.Writer) error {
	cfg, err := config.LoadResolved(configPath)
	if err != nil {
		return err
	}
	return Execute(context.Background(), cfg, WithWorkers(workers), WithOutput(stdout))
}

// Execute runs the whole chain for an already loaded config. It opens the
// log configured by cfg, builds a Controller from opts and runs it until
// the chain completes, a stage fails, or ctx is cancelled or the process
// receives SIGINT or SIGTERM. A logger passed in opts replaces the
// configured one.
func Execute(ctx context.Context, cfg *config.Resolved, opts ...Option) error {
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	c, err := New(cfg, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Run(ctx)
}
