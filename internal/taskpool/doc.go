// Package taskpool runs a batch of independent command lines across a
// bounded number of workers.
//
// A batch is all-or-nothing from the caller's point of view: once a task
// fails no further queued task is started, tasks already running are left to
// finish, and only then is an [errors.BatchFailure] returned. Nothing is
// killed on failure; a killed run is recovered by resuming the pipeline.
//
// Usage:
//
//	pool := taskpool.New(runner, 8, taskpool.WithProgress(func(done, total int) {
//	    logger.Info("batch progress", "done", done, "total", total)
//	}))
//	if err := pool.RunAll(ctx, tasks); err != nil {
//	    return err
//	}
package taskpool
