// Package errors provides the error taxonomy for the NetProphet pipeline
// runner. It defines sentinel errors, typed errors carrying stage and
// command context, and classification helpers used by the controller to
// decide how a failure is reported.
//
// # Error Types
//
//   - ConfigError: missing or unreadable configuration, raised before any stage runs
//   - PrerequisiteError: a stage was invoked while its predecessor is not complete
//   - CommandFailure: an external program exited non-zero
//   - BatchFailure: one or more tasks of a fan-out batch failed
//   - StageError: wraps any of the above with the failing stage id and name
//
// # Usage
//
//	err := errors.NewCommandFailure("Rscript build_bart_network.r ...", 2)
//	err = errors.NewStageError(4, "map_bart_network", err)
//
//	if errors.Is(err, errors.ErrCommandFailed) { ... }
//
//	var se *errors.StageError
//	if errors.As(err, &se) {
//	    fmt.Println(se.Stage)
//	}
//
// None of these errors are retried inside the process. The only recovery path
// is re-invoking the pipeline, which resumes after the last completed stage.
package errors

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration sentinel errors
var (
	// ErrConfigMissing indicates that a required configuration key is absent.
	ErrConfigMissing = New("required configuration key missing")
	// ErrConfigUnreadable indicates that the configuration file could not be read.
	ErrConfigUnreadable = New("configuration file unreadable")
	// ErrConfigInvalid indicates that a configuration value failed validation.
	ErrConfigInvalid = New("configuration invalid")
)

// Execution sentinel errors
var (
	// ErrPrerequisite indicates that a stage's predecessor has not completed.
	ErrPrerequisite = New("prerequisite stage not complete")
	// ErrCommandFailed indicates that an external command exited non-zero.
	ErrCommandFailed = New("command failed")
	// ErrBatchFailed indicates that at least one task of a batch failed.
	ErrBatchFailed = New("batch failed")
	// ErrUnknownStage indicates that a stage id is not part of the chain.
	ErrUnknownStage = New("unknown stage")
	// ErrRunLocked indicates that another run holds the lock on the run directory.
	ErrRunLocked = New("run directory is locked by another process")
)

// -----------------------------------------------------------------------------
// Typed Errors
// -----------------------------------------------------------------------------

// ConfigError represents a missing or unreadable configuration.
//
// Example:
//
//	err := errors.NewConfigError("missing key", errors.ErrConfigMissing).WithKey("OUTPUT_DIR")
//	fmt.Println(err) // "config error [key=OUTPUT_DIR]: missing key: required configuration key missing"
type ConfigError struct {
	Key     string
	Path    string
	message string
	cause   error
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{message: message, cause: cause}
}

// WithKey adds the offending configuration key to the error context.
func (e *ConfigError) WithKey(key string) *ConfigError {
	e.Key = key
	return e
}

// WithPath adds the configuration file path to the error context.
func (e *ConfigError) WithPath(path string) *ConfigError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return format("config error", parts, e.message, e.cause)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}

// PrerequisiteError is raised when a stage is invoked before the stage it
// depends on has been marked complete. It indicates an out-of-order
// invocation or a tampered progress record and is never retried.
type PrerequisiteError struct {
	Stage    int
	Required int
}

// NewPrerequisiteError creates a new PrerequisiteError.
func NewPrerequisiteError(stage, required int) *PrerequisiteError {
	return &PrerequisiteError{Stage: stage, Required: required}
}

// Error returns the formatted error message.
func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("stage %d requires stage %d to be complete", e.Stage, e.Required)
}

// Is checks if this error matches the target.
func (e *PrerequisiteError) Is(target error) bool {
	if target == ErrPrerequisite {
		return true
	}
	_, ok := target.(*PrerequisiteError)
	return ok
}

// CommandFailure represents an external process that exited with a
// non-zero status, or that could not be started at all (ExitCode -1).
type CommandFailure struct {
	Command  string
	ExitCode int
	cause    error
}

// NewCommandFailure creates a new CommandFailure.
func NewCommandFailure(command string, exitCode int) *CommandFailure {
	return &CommandFailure{Command: command, ExitCode: exitCode}
}

// WithCause attaches the underlying error (for example a start failure).
func (e *CommandFailure) WithCause(cause error) *CommandFailure {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *CommandFailure) Error() string {
	msg := fmt.Sprintf("command exited with status %d: %s", e.ExitCode, truncate(e.Command, 200))
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CommandFailure) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *CommandFailure) Is(target error) bool {
	if target == ErrCommandFailed {
		return true
	}
	_, ok := target.(*CommandFailure)
	return ok
}

// BatchFailure is returned by the task pool once every in-flight task of a
// failed batch has drained. First is the first failure observed.
type BatchFailure struct {
	Failed int
	Total  int
	First  error
}

// NewBatchFailure creates a new BatchFailure.
func NewBatchFailure(failed, total int, first error) *BatchFailure {
	return &BatchFailure{Failed: failed, Total: total, First: first}
}

// Error returns the formatted error message.
func (e *BatchFailure) Error() string {
	if e.First != nil {
		return fmt.Sprintf("%d of %d tasks failed: %v", e.Failed, e.Total, e.First)
	}
	return fmt.Sprintf("%d of %d tasks failed", e.Failed, e.Total)
}

// Unwrap returns the first task failure.
func (e *BatchFailure) Unwrap() error {
	return e.First
}

// Is checks if this error matches the target.
func (e *BatchFailure) Is(target error) bool {
	if target == ErrBatchFailed {
		return true
	}
	_, ok := target.(*BatchFailure)
	return ok
}

// StageError wraps the failure of a stage body with the stage identity.
//
// Example:
//
//	err := errors.NewStageError(5, "weighted_average_bart_network", cause)
//	fmt.Println(err) // "stage 5 (weighted_average_bart_network) failed: ..."
type StageError struct {
	Stage int
	Name  string
	cause error
}

// NewStageError creates a new StageError.
func NewStageError(stage int, name string, cause error) *StageError {
	return &StageError{Stage: stage, Name: name, cause: cause}
}

// Error returns the formatted error message.
func (e *StageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("stage %d (%s) failed: %v", e.Stage, e.Name, e.cause)
	}
	return fmt.Sprintf("stage %d (%s) failed", e.Stage, e.Name)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *StageError) Is(target error) bool {
	_, ok := target.(*StageError)
	return ok
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// FailedStage returns the id of the stage that produced err, or 0 when err
// does not carry stage context.
func FailedStage(err error) int {
	var se *StageError
	if As(err, &se) {
		return se.Stage
	}
	var pe *PrerequisiteError
	if As(err, &pe) {
		return pe.Stage
	}
	return 0
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return As(err, &ce)
}

// ExitCode maps an error to the process exit status: 0 for nil, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// Wrap wraps an error with additional context and records the call stack;
// "%+v" prints it. Returns nil if err is nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message and records the call stack.
// Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func format(kind string, parts []string, message string, cause error) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
