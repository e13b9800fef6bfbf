// Package tasks copies a playlist from one YouTube playlist to another with real-time progress reporting.
//
// # State Machine
//
// [TransferEngine.Run] walks Idle → Listing → Resuming → Transferring and stops in one terminal state:
//
//   - Completed: every planned item was inserted (or the source was empty); the checkpoint is cleared
//   - Aborted: an insertion failed, the checkpoint could not be saved, or the context was cancelled;
//     the checkpoint keeps the last confirmed success
//   - Failed: the source could not be listed or the checkpoint could not be read; nothing was written
//
// # Resuming
//
// [ResumePoint] is the pure planning step. Given the listed sequence and the stored checkpoint it returns the
// items strictly after the checkpoint, or the whole sequence when the checkpoint is absent or stale.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunRepository) stores one row per run.
// Recorder errors are logged and never change the outcome of a transfer.
package tasks
