// Package logging provides structured logging for NetProphet pipeline runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs. Every
// entry written during a run carries the run ID, and entries written while a
// stage executes also carry the stage number and name, so the log of a
// resumed run can be filtered per stage after the fact.
//
// External programs never write here: their stdout and stderr are discarded
// by the command runner. The log records what the engine decided (skip, run,
// complete, fail) and batch progress.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying handler, so fan-out workers
// may log through the same stage logger.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/data/run/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLog := logger.WithRun(runID)
//	stageLog := runLog.WithStage(8, "infer_motifs")
//	stageLog.Info("batch progress", "done", 12, "total", 140)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"batch progress","run_id":"...","stage":8,"stage_name":"infer_motifs","done":12,"total":140}
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewLoggerTo] with a buffer to
// assert on the emitted JSON lines.
package logging
