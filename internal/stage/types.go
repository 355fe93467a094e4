package stage

import (
	"context"
	"time"
)

// Body is the work of one stage. Bodies are closures bound to the run
// configuration when the chain is built.
type Body func(ctx context.Context) error

// Stage is one numbered unit of work in the chain.
type Stage struct {
	ID   int
	Name string
	Run  Body
}

// ProgressStore is the durable record of completed stages the chain
// consults and updates. *progress.Store implements it.
type ProgressStore interface {
	IsComplete(stage int) (bool, error)
	MarkComplete(stage int) error
}

// State is the lifecycle state of a stage within one invocation.
type State string

const (
	// StatePending indicates the stage has not been looked at yet.
	StatePending State = "pending"

	// StateSkipped indicates the stage was already complete and was not run.
	StateSkipped State = "skipped"

	// StateRunning indicates the stage body is executing.
	StateRunning State = "running"

	// StateComplete indicates the body succeeded and the stage was marked.
	StateComplete State = "complete"

	// StateFailed indicates the stage aborted; the chain stops here.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if this state ends the invocation of a stage.
func (s State) IsTerminal() bool {
	return s == StateSkipped || s == StateComplete || s == StateFailed
}

// Event describes a stage state transition.
type Event struct {
	Stage    int
	Name     string
	Total    int
	State    State
	Err      error         // set for StateFailed
	Duration time.Duration // set for StateComplete and StateFailed
}

// Observer receives stage events. It is called synchronously from the
// goroutine driving the chain.
type Observer func(Event)
