// Package repositories implements SQLite persistence for transfer runs and resume checkpoints.
//
// Key Implementations:
//   - [RunRepository] : transfer run history with status tracking and soft deletes
//   - [CheckpointRepository] : a checkpoint.Store keyed by source/destination playlist pair
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
