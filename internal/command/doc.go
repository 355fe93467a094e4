// Package command executes external programs on behalf of pipeline stages.
//
// A [Runner] takes a complete shell command line, runs it as a child process
// with stdin, stdout and stderr attached to the null device, waits for it,
// and reports a non-zero exit as an [errors.CommandFailure]. Only the exit
// status is inspected; output redirections that the command line itself
// contains (for example "fimo ... > scan.txt") are honored by the shell.
//
// [ShellRunner] is the production implementation. [Recorder] records command
// lines instead of executing them and is used by tests.
package command
