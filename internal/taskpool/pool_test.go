package taskpool_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

// gaugeRunner tracks how many Run calls are in flight at once.
type gaugeRunner struct {
	delay   time.Duration
	fail    map[string]int
	current atomic.Int64
	peak    atomic.Int64
	mu      sync.Mutex
	ran     []string
}

func (g *gaugeRunner) Run(ctx context.Context, line string) error {
	n := g.current.Add(1)
	defer g.current.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(g.delay)

	g.mu.Lock()
	g.ran = append(g.ran, line)
	g.mu.Unlock()

	if code, ok := g.fail[line]; ok {
		return errors.NewCommandFailure(line, code)
	}
	return nil
}

func makeTasks(n int) []string {
	tasks := make([]string, n)
	for i := range tasks {
		tasks[i] = fmt.Sprintf("task-%d", i)
	}
	return tasks
}

func TestNormalizeWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, taskpool.NormalizeWorkers(-3))
	assert.Equal(t, 1, taskpool.NormalizeWorkers(0))
	assert.Equal(t, 1, taskpool.NormalizeWorkers(1))
	assert.Equal(t, 8, taskpool.NormalizeWorkers(8))
}

func TestRunAllEmpty(t *testing.T) {
	t.Parallel()

	rec := command.NewRecorder()
	pool := taskpool.New(rec, 4)
	require.NoError(t, pool.RunAll(context.Background(), nil))
	assert.Empty(t, rec.Lines())
}

func TestRunAllSuccess(t *testing.T) {
	t.Parallel()

	rec := command.NewRecorder()
	pool := taskpool.New(rec, 3)
	tasks := makeTasks(20)

	require.NoError(t, pool.RunAll(context.Background(), tasks))
	assert.ElementsMatch(t, tasks, rec.Lines())
}

func TestRunAllZeroWorkersRunsSequentially(t *testing.T) {
	t.Parallel()

	runner := &gaugeRunner{delay: 5 * time.Millisecond}
	pool := taskpool.New(runner, 0)
	require.Equal(t, 1, pool.Workers())

	tasks := makeTasks(5)
	require.NoError(t, pool.RunAll(context.Background(), tasks))

	assert.Equal(t, int64(1), runner.peak.Load())
	// One worker pulls tasks in enumeration order.
	assert.Equal(t, tasks, runner.ran)
}

func TestRunAllRespectsWorkerBound(t *testing.T) {
	t.Parallel()

	runner := &gaugeRunner{delay: 10 * time.Millisecond}
	pool := taskpool.New(runner, 3)

	require.NoError(t, pool.RunAll(context.Background(), makeTasks(12)))
	assert.LessOrEqual(t, runner.peak.Load(), int64(3))
	assert.Len(t, runner.ran, 12)
}

func TestRunAllProgress(t *testing.T) {
	t.Parallel()

	var seen []int
	pool := taskpool.New(command.NewRecorder(), 4, taskpool.WithProgress(func(done, total int) {
		assert.Equal(t, 10, total)
		seen = append(seen, done)
	}))

	require.NoError(t, pool.RunAll(context.Background(), makeTasks(10)))
	require.Len(t, seen, 10)
	for i, done := range seen {
		assert.Equal(t, i+1, done)
	}
}

func TestRunAllFailure(t *testing.T) {
	t.Parallel()

	runner := &gaugeRunner{fail: map[string]int{"task-2": 7}}
	pool := taskpool.New(runner, 1)

	err := pool.RunAll(context.Background(), makeTasks(6))
	require.Error(t, err)

	var bf *errors.BatchFailure
	require.True(t, errors.As(err, &bf))
	assert.Equal(t, 1, bf.Failed)
	assert.Equal(t, 6, bf.Total)

	var cf *errors.CommandFailure
	require.True(t, errors.As(err, &cf))
	assert.Equal(t, 7, cf.ExitCode)

	// With a single worker nothing after the failing task may start.
	assert.Equal(t, []string{"task-0", "task-1", "task-2"}, runner.ran)
}

func TestRunAllFailureDrainsInFlight(t *testing.T) {
	t.Parallel()

	runner := &gaugeRunner{
		delay: 20 * time.Millisecond,
		fail:  map[string]int{"task-0": 1},
	}
	pool := taskpool.New(runner, 4)

	err := pool.RunAll(context.Background(), makeTasks(40))
	require.ErrorIs(t, err, errors.ErrBatchFailed)

	// RunAll returned, so nothing may still be running.
	assert.Equal(t, int64(0), runner.current.Load())
	// The queue was cut short after the failure.
	assert.Less(t, len(runner.ran), 40)
}

func TestRunAllShellTasks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pool := taskpool.New(command.NewShellRunner(dir), 2)

	err := pool.RunAll(context.Background(), []string{"true", "exit 5", "true"})
	var cf *errors.CommandFailure
	require.True(t, errors.As(err, &cf))
	assert.Equal(t, 5, cf.ExitCode)
}
