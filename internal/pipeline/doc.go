// Package pipeline provides the controller that drives one NetProphet 2.0
// run.
//
// A [Controller] owns the stage chain and the single progress record of a
// run directory. [Controller.Run] takes the run lock, invokes stages 1..K
// strictly in order, and stops at the first failure. Completed stages are
// skipped, so re-running after a failure picks up at the failed stage.
//
// The progress record is never cleared automatically. When every stage is
// already complete, Run prints a notice and every stage skips;
// [Controller.Reset] is the explicit operator action that forces a re-run.
//
// # Usage
//
//	cfg, _ := config.LoadResolved("config.yaml")
//	c, _ := pipeline.New(cfg, pipeline.WithWorkers(8))
//	if err := c.Run(ctx); err != nil {
//	    // err names the failing stage
//	}
package pipeline
