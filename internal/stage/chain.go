package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
)

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger used for stage lifecycle messages.
func WithLogger(l *logging.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// WithObserver registers an observer for stage events.
func WithObserver(o Observer) Option {
	return func(c *Chain) {
		c.observers = append(c.observers, o)
	}
}

// Chain is an ordered list of stages gated by a progress store.
// It is driven from a single goroutine.
type Chain struct {
	stages    []Stage
	store     ProgressStore
	logger    *logging.Logger
	observers []Observer
}

// NewChain creates a Chain. Stage ids must be exactly 1..len(stages) in
// order, and every stage needs a name and a body.
func NewChain(store ProgressStore, stages []Stage, opts ...Option) (*Chain, error) {
	if store == nil {
		return nil, errors.New("stage: progress store is required")
	}
	if len(stages) == 0 {
		return nil, errors.New("stage: at least one stage is required")
	}
	for i, s := range stages {
		if s.ID != i+1 {
			return nil, fmt.Errorf("stage: stage at position %d has id %d, want %d", i, s.ID, i+1)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("stage: stage %d has no name", s.ID)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("stage: stage %d (%s) has no body", s.ID, s.Name)
		}
	}

	c := &Chain{
		stages: append([]Stage(nil), stages...),
		store:  store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NopLogger()
	}
	return c, nil
}

// Len returns the number of stages K.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns a copy of the stages in order.
func (c *Chain) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// Stage returns the stage with the given id.
func (c *Chain) Stage(id int) (Stage, bool) {
	if id < 1 || id > len(c.stages) {
		return Stage{}, false
	}
	return c.stages[id-1], true
}

// RunAll invokes stages 1..K in order and stops at the first failure.
func (c *Chain) RunAll(ctx context.Context) error {
	for _, s := range c.stages {
		if err := ctx.Err(); err != nil {
			return errors.NewStageError(s.ID, s.Name, err)
		}
		if _, err := c.RunStage(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// RunStage invokes one stage and returns its terminal state. The error is
// a *errors.PrerequisiteError when the predecessor is incomplete, or a
// *errors.StageError wrapping the body or store failure.
func (c *Chain) RunStage(ctx context.Context, id int) (State, error) {
	s, ok := c.Stage(id)
	if !ok {
		return StateFailed, errors.Wrapf(errors.ErrUnknownStage, "stage %d", id)
	}
	log := c.logger.WithStage(s.ID, s.Name)

	done, err := c.store.IsComplete(s.ID)
	if err != nil {
		return c.fail(log, s, errors.NewStageError(s.ID, s.Name, err), 0)
	}
	if done {
		log.Info("stage already complete, skipping")
		c.emit(Event{Stage: s.ID, Name: s.Name, State: StateSkipped})
		return StateSkipped, nil
	}

	if s.ID > 1 {
		prev, err := c.store.IsComplete(s.ID - 1)
		if err != nil {
			return c.fail(log, s, errors.NewStageError(s.ID, s.Name, err), 0)
		}
		if !prev {
			return c.fail(log, s, errors.NewPrerequisiteError(s.ID, s.ID-1), 0)
		}
	}

	log.Info("stage started")
	c.emit(Event{Stage: s.ID, Name: s.Name, State: StateRunning})
	start := time.Now()

	if err := s.Run(ctx); err != nil {
		return c.fail(log, s, errors.NewStageError(s.ID, s.Name, err), time.Since(start))
	}

	if err := c.store.MarkComplete(s.ID); err != nil {
		return c.fail(log, s, errors.NewStageError(s.ID, s.Name, fmt.Errorf("record completion: %w", err)), time.Since(start))
	}

	elapsed := time.Since(start)
	log.Info("stage complete", "duration_ms", elapsed.Milliseconds())
	c.emit(Event{Stage: s.ID, Name: s.Name, State: StateComplete, Duration: elapsed})
	return StateComplete, nil
}

func (c *Chain) fail(log *logging.Logger, s Stage, err error, elapsed time.Duration) (State, error) {
	log.Error("stage failed", "error", err.Error(), "duration_ms", elapsed.Milliseconds())
	c.emit(Event{Stage: s.ID, Name: s.Name, State: StateFailed, Err: err, Duration: elapsed})
	return StateFailed, err
}

func (c *Chain) emit(e Event) {
	e.Total = len(c.stages)
	for _, o := range c.observers {
		o(e)
	}
}
