// Package progress persists which pipeline stages have completed.
//
// The record is a JSON array of stage numbers stored at
// {dir}/progress.json. A missing file means no stage is complete. Every
// mark rewrites the whole file through a temporary file and a rename, so a
// crash leaves either the old record or the new one on disk, never a torn
// write. Nothing is kept in memory between calls: the file is the only
// source of truth, and a restarted process derives exactly the same set of
// completed stages.
//
// The store assumes a single writer. [RunLock] lets the controller enforce
// that by refusing to start a second run against the same directory.
//
// Usage:
//
//	store := progress.Open(runDir)
//	done, err := store.IsComplete(4)
//	if err == nil && !done {
//	    // ... run stage 4 ...
//	    err = store.MarkComplete(4)
//	}
package progress
