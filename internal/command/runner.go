package command

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// Runner executes one command line and returns a *errors.CommandFailure
// when it exits non-zero. Implementations must be safe for concurrent use.
type Runner interface {
	Run(ctx context.Context, commandLine string) error
}

// DefaultShell is the shell used to interpret command lines.
const DefaultShell = "/bin/sh"

// killWaitDelay bounds how long Run waits for the process group to exit
// after it was killed.
const killWaitDelay = 5 * time.Second

// ShellRunner runs command lines through a POSIX shell.
type ShellRunner struct {
	// Shell is the interpreter invoked as "<Shell> -c <line>" (default: /bin/sh)
	Shell string
	// Dir is the working directory of the child (default: current directory)
	Dir string
}

// NewShellRunner creates a ShellRunner whose children run in dir.
func NewShellRunner(dir string) *ShellRunner {
	return &ShellRunner{Shell: DefaultShell, Dir: dir}
}

// Run executes commandLine and waits for it to exit. Output streams are
// discarded. The shell runs in its own process group, and cancelling ctx
// kills the whole group, including every program the shell started. That
// is reported as a failure like any other non-zero exit.
func (r *ShellRunner) Run(ctx context.Context, commandLine string) error {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", commandLine)
	cmd.Dir = r.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = killWaitDelay

	// nil streams are connected to the null device
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == -1 {
			// Killed by a signal; report 128+signal like a shell would.
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				code = 128 + int(status.Signal())
			}
		}
		failure := errors.NewCommandFailure(commandLine, code)
		if ctxErr := ctx.Err(); ctxErr != nil {
			failure = failure.WithCause(ctxErr)
		}
		return failure
	}

	// The process never started (missing shell, bad working directory).
	return errors.NewCommandFailure(commandLine, -1).WithCause(err)
}
