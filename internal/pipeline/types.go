package pipeline

import (
	"io"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
)

// StageStatus is the persisted state of one stage.
type StageStatus struct {
	ID       int
	Name     string
	Complete bool
}

// Summary is the progress of a run directory as a whole.
type Summary struct {
	Stages    []StageStatus
	Completed int
	// Next is the first incomplete stage, or 0 when every stage is complete.
	Next int
}

// Done reports whether every stage is complete.
func (s Summary) Done() bool {
	return s.Next == 0
}

// controllerConfig holds optional settings for the Controller.
type controllerConfig struct {
	workers int
	runner  command.Runner
	logger  *logging.Logger
	out     io.Writer
	stages  StageFactory
}
