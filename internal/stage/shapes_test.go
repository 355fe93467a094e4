package stage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/taskpool"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestSetup(t *testing.T) {
	root := t.TempDir()
	dirs := []string{
		filepath.Join(root, "networks"),
		filepath.Join(root, "motif_inference", "network_scores"),
	}

	body := Setup(dirs...)
	for i := 0; i < 2; i++ {
		// Second run: existing directories are not an error.
		if err := body(context.Background()); err != nil {
			t.Fatalf("Setup run %d: %v", i+1, err)
		}
	}

	for _, d := range dirs {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", d)
		}
	}
}

func TestSetup_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "networks")
	if err := writeFile(blocker, "x"); err != nil {
		t.Fatal(err)
	}

	if err := Setup(filepath.Join(blocker, "sub"))(context.Background()); err == nil {
		t.Error("Setup should fail when a file blocks the path")
	}
}

func TestSingle(t *testing.T) {
	rec := command.NewRecorder()
	var post []string

	body := Single(rec, "Rscript build_bart_network.r",
		func() error { post = append(post, "strip"); return nil },
		func() error { post = append(post, "check"); return nil },
	)
	if err := body(context.Background()); err != nil {
		t.Fatalf("Single: %v", err)
	}

	if got := rec.Lines(); len(got) != 1 || got[0] != "Rscript build_bart_network.r" {
		t.Errorf("Lines() = %v", got)
	}
	if strings.Join(post, ",") != "strip,check" {
		t.Errorf("post steps = %v, want strip,check", post)
	}
}

func TestSingle_FailureSkipsPost(t *testing.T) {
	rec := command.NewRecorder().FailOn("Rscript", 1)
	ran := false

	err := Single(rec, "Rscript x.r", func() error { ran = true; return nil })(context.Background())
	if !errors.Is(err, errors.ErrCommandFailed) {
		t.Errorf("Single = %v, want CommandFailure", err)
	}
	if ran {
		t.Error("post step ran after the command failed")
	}
}

func TestSingle_PostFailure(t *testing.T) {
	boom := errors.New("bad matrix")
	err := Single(command.NewRecorder(), "true", func() error { return boom })(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Single = %v, want post-process error", err)
	}
}

func TestComposite(t *testing.T) {
	rec := command.NewRecorder()
	body := Composite(
		Single(rec, "python parse_network_scores.py"),
		Single(rec, "python parse_quantized_bins.py"),
	)

	if err := body(context.Background()); err != nil {
		t.Fatalf("Composite: %v", err)
	}
	lines := rec.Lines()
	if len(lines) != 2 || !strings.Contains(lines[0], "network_scores") || !strings.Contains(lines[1], "quantized") {
		t.Errorf("Lines() = %v, want scores then bins", lines)
	}
}

func TestComposite_StopsAtFirstFailure(t *testing.T) {
	rec := command.NewRecorder().FailOn("first", 3)
	body := Composite(Single(rec, "first"), Single(rec, "second"))

	err := body(context.Background())
	if err == nil || !strings.Contains(err.Error(), "step 1 of 2") {
		t.Errorf("Composite = %v, want step 1 failure", err)
	}
	if rec.Count("second") != 0 {
		t.Error("second step ran after the first failed")
	}
}

func TestFanOut_SequentialBatches(t *testing.T) {
	rec := command.NewRecorder()
	pool := taskpool.New(rec, 4)

	var scanSeenBeforeExtract bool
	body := FanOut(pool, nil,
		NewBatch("scan", Tasks("scan A", "scan B", "scan C")),
		NewBatch("extract", func() ([]string, error) {
			// Built lazily: every scan task has finished by now.
			scanSeenBeforeExtract = rec.Count("scan") == 3
			return []string{"extract A", "extract B", "extract C"}, nil
		}),
	)

	if err := body(context.Background()); err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if !scanSeenBeforeExtract {
		t.Error("extract batch was built before the scan batch finished")
	}

	lines := rec.Lines()
	for i, line := range lines {
		if i < 3 && !strings.HasPrefix(line, "scan") {
			t.Errorf("line %d = %q, want a scan task", i, line)
		}
		if i >= 3 && !strings.HasPrefix(line, "extract") {
			t.Errorf("line %d = %q, want an extract task", i, line)
		}
	}
}

func TestFanOut_FailureAbortsLaterBatches(t *testing.T) {
	rec := command.NewRecorder().FailOn("scan B", 1)
	pool := taskpool.New(rec, 2)

	err := FanOut(pool, nil,
		NewBatch("scan", Tasks("scan A", "scan B")),
		NewBatch("score", Tasks("score A", "score B")),
	)(context.Background())

	if !errors.Is(err, errors.ErrBatchFailed) {
		t.Fatalf("FanOut = %v, want BatchFailure", err)
	}
	if rec.Count("score") != 0 {
		t.Error("score batch started after the scan batch failed")
	}
}

func TestFanOut_TaskBuildError(t *testing.T) {
	boom := errors.New("no regulators file")
	err := FanOut(taskpool.New(command.NewRecorder(), 1), nil,
		NewBatch("scan", func() ([]string, error) { return nil, boom }),
	)(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("FanOut = %v, want build error", err)
	}
}

func TestFanOut_EmptyBatch(t *testing.T) {
	rec := command.NewRecorder()
	err := FanOut(taskpool.New(rec, 1), nil,
		NewBatch("empty", Tasks()),
		NewBatch("next", Tasks("next A")),
	)(context.Background())

	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if rec.Count("next") != 1 {
		t.Error("batch after an empty batch did not run")
	}
}

// A failing fan-out leaves its stage unmarked.
func TestFanOut_StageNotMarkedOnFailure(t *testing.T) {
	rec := command.NewRecorder().FailOn("task 3", 1)
	store := newSpyStore(t)

	tasks := []string{"task 1", "task 2", "task 3", "task 4"}
	c, err := NewChain(store, []Stage{
		{ID: 1, Name: "fanout", Run: FanOut(taskpool.New(rec, 2), nil, NewBatch("all", Tasks(tasks...)))},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	if err := c.RunAll(context.Background()); err == nil {
		t.Fatal("RunAll should fail")
	}
	if done, _ := store.IsComplete(1); done {
		t.Error("fan-out stage marked complete despite a failed task")
	}
}
