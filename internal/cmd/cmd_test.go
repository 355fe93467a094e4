package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
	"github.com/ygidtu/NetProphet-2.0/internal/logging"
	"github.com/ygidtu/NetProphet-2.0/internal/netprophet"
	"github.com/ygidtu/NetProphet-2.0/internal/progress"
)

const testConfigYAML = `NETPROPHET2_DIR: .
RESOURCES_DIR: resources
OUTPUT_DIR: output
FILENAME_GENES: genes
FILENAME_REGULATORS: regulators
FILENAME_EXPRESSION_DATA: data.expr
FILENAME_SAMPLE_CONDITIONS: conditions
FILENAME_DE_ADJMTR: signed.dc
FILENAME_PROMOTERS: promoter.fasta
DBD_PID_DIR: resources/dbd_pid
MOTIF_THRESHOLD: 1e-5
FILENAME_NETPROPHET2_NETWORK: net.adjmtr
tools:
  rscript: "false"
`

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupRunDir writes a config file into a fresh run directory.
func setupRunDir(t *testing.T, completed ...int) (dir, cfgPath string) {
	t.Helper()

	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(testConfigYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	store := progress.Open(dir)
	for _, id := range completed {
		if err := store.MarkComplete(id); err != nil {
			t.Fatalf("MarkComplete(%d): %v", id, err)
		}
	}
	return dir, cfgPath
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "netprophet" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "netprophet")
	}

	expectedCmds := []string{"status", "reset", "stages"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}

	for _, flag := range []string{"config", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
	p := rootCmd.Flags().ShorthandLookup("p")
	if p == nil || p.Name != "processes" || p.DefValue != "1" {
		t.Errorf("--processes/-p flag = %+v, want default 1", p)
	}
}

func TestStagesCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "stages")
	if err != nil {
		t.Fatalf("stages failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != netprophet.StageCount {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), netprophet.StageCount, output)
	}
	if !strings.Contains(lines[0], "make_directories") || !strings.Contains(lines[10], "assemble_final_network") {
		t.Errorf("unexpected stage listing:\n%s", output)
	}
}

func TestStatusCommand(t *testing.T) {
	_, cfgPath := setupRunDir(t, 1, 2, 3)

	output, err := executeCommand(rootCmd, "status", "-c", cfgPath)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	for _, want := range []string{"map_np_network", "3 of 11 stages complete", "next: 4"} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q:\n%s", want, output)
		}
	}
}

func TestStatusCommand_AllComplete(t *testing.T) {
	_, cfgPath := setupRunDir(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)

	output, err := executeCommand(rootCmd, "status", "-c", cfgPath)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(output, "All 11 stages complete") || !strings.Contains(output, "net.adjmtr") {
		t.Errorf("status output:\n%s", output)
	}
}

func TestResetCommand(t *testing.T) {
	dir, cfgPath := setupRunDir(t, 1, 2, 3, 4, 5)

	output, err := executeCommand(rootCmd, "reset", "-c", cfgPath, "--from", "3")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(output, "stages 3..11") {
		t.Errorf("reset output = %q", output)
	}

	got, err := progress.Open(dir).Completed()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("progress = %v, want [1 2]", got)
	}

	if _, err := executeCommand(rootCmd, "reset", "-c", cfgPath, "--from", "1"); err != nil {
		t.Fatalf("reset --from 1 failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, progress.FileName)); !os.IsNotExist(err) {
		t.Error("reset --from 1 should remove the progress record")
	}
}

func TestResetCommand_InvalidStage(t *testing.T) {
	_, cfgPath := setupRunDir(t)

	_, err := executeCommand(rootCmd, "reset", "-c", cfgPath, "--from", "99")
	if !errors.Is(err, errors.ErrUnknownStage) {
		t.Errorf("reset --from 99 = %v, want ErrUnknownStage", err)
	}
}

// resetFlags restores every root flag to its default and clears Changed,
// since flag state persists on the package-level command between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset --%s: %v", f.Name, err)
		}
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
}

func TestRunCommand_NoArgsShowsHelp(t *testing.T) {
	resetFlags(t)
	t.Setenv("NETPROPHET_CONFIG", "")

	output, err := executeCommand(rootCmd, []string{}...)
	if err != nil {
		t.Fatalf("bare invocation = %v, want help", err)
	}
	if !strings.Contains(output, "Usage:") || !strings.Contains(output, "--processes") {
		t.Errorf("expected usage output, got:\n%s", output)
	}
}

func TestRunCommand_ProcessesWithoutConfig(t *testing.T) {
	resetFlags(t)
	t.Setenv("NETPROPHET_CONFIG", "")

	_, err := executeCommand(rootCmd, "-p", "2")
	if !errors.Is(err, errors.ErrConfigMissing) {
		t.Errorf("run without --config = %v, want ErrConfigMissing", err)
	}
}

func TestRunCommand_MissingConfig(t *testing.T) {
	_, err := executeCommand(rootCmd, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "-p", "1")
	if !errors.IsConfigError(err) {
		t.Errorf("run with missing config = %v, want ConfigError", err)
	}
	if errors.ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", errors.ExitCode(err))
	}
}

func TestRunCommand_StageFailure(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("Skipping test - /bin/sh not available")
	}
	dir, cfgPath := setupRunDir(t)

	output, err := executeCommand(rootCmd, "-c", cfgPath, "-p", "2", "--log-level", "debug")
	if errors.FailedStage(err) != 2 {
		t.Fatalf("run = %v, want stage 2 failure", err)
	}
	if !strings.Contains(output, "[1/11] make_directories: complete") {
		t.Errorf("output missing stage 1 line:\n%s", output)
	}

	got, _ := progress.Open(dir).Completed()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("progress = %v, want [1]", got)
	}
}

func TestRunCommand_LogLevelOverride(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("Skipping test - /bin/sh not available")
	}
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := testConfigYAML + "logging:\n  level: error\n  dir: logs\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := executeCommand(rootCmd, "-c", cfgPath, "-p", "1", "--log-level", "info"); errors.FailedStage(err) != 2 {
		t.Fatalf("run = %v, want stage 2 failure", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "logs", logging.FileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"stage started"`) {
		t.Errorf("--log-level info ignored; log:\n%s", content)
	}
}

func TestStatusCommand_Dot(t *testing.T) {
	_, cfgPath := setupRunDir(t, 1)
	// The flag persists on the package-level command between executions.
	t.Cleanup(func() { statusDot = false })

	output, err := executeCommand(rootCmd, "status", "-c", cfgPath, "--dot")
	if err != nil {
		t.Fatalf("status --dot failed: %v", err)
	}
	if !strings.Contains(output, "digraph") || !strings.Contains(output, "2 map_np_network") {
		t.Errorf("status --dot output:\n%s", output)
	}
}
