package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [TransferRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed" // every planned item inserted, or nothing to do
	RunAborted   RunStatus = "aborted"   // stopped at a failed insertion; checkpoint kept
	RunFailed    RunStatus = "failed"    // could not list the source or read the checkpoint
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunPending, RunRunning, RunCompleted, RunAborted, RunFailed:
		return true
	}
	return false
}

// Terminal reports whether the run has finished.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunAborted || s == RunFailed
}

// TransferRun records one execution of a playlist transfer.
type TransferRun struct {
	id                    string
	sequence              int
	sourcePlaylistID      string
	destinationPlaylistID string
	status                RunStatus
	itemsTotal            int
	itemsPlanned          int
	itemsTransferred      int
	resumedFrom           string
	failedItemID          string
	errorMessage          string
	startedAt             *time.Time
	completedAt           *time.Time
	createdAt             time.Time
	updatedAt             time.Time
	deletedAt             *time.Time
}

var _ Model = (*TransferRun)(nil)

// NewTransferRun creates a pending run for the given playlists.
func NewTransferRun(source, destination string) *TransferRun {
	now := time.Now()
	return &TransferRun{
		sourcePlaylistID:      source,
		destinationPlaylistID: destination,
		status:                RunPending,
		createdAt:             now,
		updatedAt:             now,
	}
}

func (r *TransferRun) ID() string                    { return r.id }
func (r *TransferRun) Sequence() int                 { return r.sequence }
func (r *TransferRun) SourcePlaylistID() string      { return r.sourcePlaylistID }
func (r *TransferRun) DestinationPlaylistID() string { return r.destinationPlaylistID }
func (r *TransferRun) Status() RunStatus             { return r.status }
func (r *TransferRun) ItemsTotal() int               { return r.itemsTotal }
func (r *TransferRun) ItemsPlanned() int             { return r.itemsPlanned }
func (r *TransferRun) ItemsTransferred() int         { return r.itemsTransferred }
func (r *TransferRun) ResumedFrom() string           { return r.resumedFrom }
func (r *TransferRun) FailedItemID() string          { return r.failedItemID }
func (r *TransferRun) ErrorMessage() string          { return r.errorMessage }
func (r *TransferRun) StartedAt() *time.Time         { return r.startedAt }
func (r *TransferRun) CompletedAt() *time.Time       { return r.completedAt }
func (r *TransferRun) CreatedAt() time.Time          { return r.createdAt }
func (r *TransferRun) UpdatedAt() time.Time          { return r.updatedAt }
func (r *TransferRun) DeletedAt() *time.Time         { return r.deletedAt }

func (r *TransferRun) SetID(id string)              { r.id = id }
func (r *TransferRun) SetSequence(seq int)          { r.sequence = seq }
func (r *TransferRun) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *TransferRun) SetResumedFrom(id string)     { r.resumedFrom = id }
func (r *TransferRun) SetTransferred(n int)         { r.itemsTransferred = n }
func (r *TransferRun) SetFailedItemID(id string)    { r.failedItemID = id }
func (r *TransferRun) SetErrorMessage(msg string)   { r.errorMessage = msg }
func (r *TransferRun) SetPlan(total, planned int)   { r.itemsTotal, r.itemsPlanned = total, planned }
func (r *TransferRun) SetDeletedAt(t *time.Time)    { r.deletedAt = t }
func (r *TransferRun) SetTimestamps(c, u time.Time) { r.createdAt, r.updatedAt = c, u }

// Start marks the run as running.
func (r *TransferRun) Start(at time.Time) {
	r.status = RunRunning
	r.startedAt = &at
}

// Finish moves the run to a terminal status.
func (r *TransferRun) Finish(status RunStatus, at time.Time) {
	r.status = status
	r.completedAt = &at
}

// Restore sets the fields only the database knows about when a run is loaded.
func (r *TransferRun) Restore(status RunStatus, startedAt, completedAt *time.Time) {
	r.status = status
	r.startedAt = startedAt
	r.completedAt = completedAt
}

// Validate checks the run's invariants.
func (r *TransferRun) Validate() error {
	if r.sourcePlaylistID == "" {
		return fmt.Errorf("source playlist ID is required")
	}
	if r.destinationPlaylistID == "" {
		return fmt.Errorf("destination playlist ID is required")
	}
	if !r.status.Valid() {
		return fmt.Errorf("invalid status %q", r.status)
	}
	if r.itemsPlanned > r.itemsTotal {
		return fmt.Errorf("planned items (%d) exceed total items (%d)", r.itemsPlanned, r.itemsTotal)
	}
	if r.itemsTransferred > r.itemsPlanned {
		return fmt.Errorf("transferred items (%d) exceed planned items (%d)", r.itemsTransferred, r.itemsPlanned)
	}
	return nil
}
