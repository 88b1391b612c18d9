// Package sync reconciles remote tracker issues against local note files.
//
// One run is fetch → map → (optional purge) → per-issue reconcile, where
// each issue independently lands in one of three outcomes: created,
// updated, or skipped. Per-issue file failures are logged and counted
// without aborting the run; a fetch failure aborts the whole run with no
// partial success and no rollback of files already written.
//
// A single advisory in-flight gate protects the user-facing entry point:
// a trigger arriving while a run is in flight is dropped, not queued.
package sync
