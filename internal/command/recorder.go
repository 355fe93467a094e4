package command

import (
	"context"
	"strings"
	"sync"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// Recorder is a Runner that records command lines without executing them.
// Lines containing a registered failure substring fail with the registered
// exit code. When several substrings match, the first registered wins.
type Recorder struct {
	mu       sync.Mutex
	lines    []string
	failures []failure
}

type failure struct {
	substr string
	code   int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailOn makes every future command line containing substr fail with code.
// Registering substr again replaces its code.
func (r *Recorder) FailOn(substr string, code int) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.failures {
		if r.failures[i].substr == substr {
			r.failures[i].code = code
			return r
		}
	}
	r.failures = append(r.failures, failure{substr: substr, code: code})
	return r
}

// Run records commandLine and returns the scripted result.
func (r *Recorder) Run(ctx context.Context, commandLine string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCommandFailure(commandLine, -1).WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, commandLine)
	for _, f := range r.failures {
		if strings.Contains(commandLine, f.substr) {
			return errors.NewCommandFailure(commandLine, f.code)
		}
	}
	return nil
}

// Lines returns a copy of the recorded command lines in call order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Count returns how many recorded command lines contain substr.
func (r *Recorder) Count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, line := range r.lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded line. Registered failures are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
