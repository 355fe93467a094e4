package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// LockFileName is the name of the run lock inside the run directory.
const LockFileName = "progress.lock"

// RunLock provides cross-process mutual exclusion using flock(2).
// The controller holds it for the whole run so that two processes never
// write the same progress record.
type RunLock struct {
	path string
	file *os.File
}

// NewRunLock creates a RunLock for the given directory. The lock file is
// created inside dir as "progress.lock".
func NewRunLock(dir string) *RunLock {
	return &RunLock{
		path: filepath.Join(dir, LockFileName),
	}
}

// TryLock attempts to acquire the lock without blocking. When another
// process holds it, the returned error matches errors.ErrRunLocked.
func (l *RunLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return errors.Wrapf(errors.ErrRunLocked, "lock %s", l.path)
		}
		return fmt.Errorf("flock: %w", err)
	}

	l.file = f
	return nil
}

// Unlock releases the lock and closes the lock file. The file itself is
// left in place.
func (l *RunLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf("funlock: %w", err)
	}

	err := l.file.Close()
	l.file = nil
	return err
}
