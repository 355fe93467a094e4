// Package stage implements the resumable, strictly ordered stage chain.
//
// A [Chain] holds stages numbered 1..K. Invoking stage i:
//
//  1. skips it when the progress store already records i as complete,
//  2. fails with an [errors.PrerequisiteError] when i > 1 and stage i-1 is
//     not complete, without touching the store,
//  3. runs the stage body, and
//  4. marks i complete only if the body returned nil.
//
// A failed body leaves the stage unmarked, so the next invocation retries it
// from the start. Bodies that write files before failing must therefore
// overwrite their outputs on retry.
//
// Bodies are composed from four shapes: [Setup] (create directories),
// [Single] (one command line plus optional post-processing), [Composite]
// (several bodies in sequence under one stage number) and [FanOut] (one or
// more sequential batches run through a [taskpool.Pool]).
package stage
