// package tasks implements the resumable playlist transfer.
//
// The core abstraction is TransferEngine, which lists the source playlist, resumes from a checkpoint and copies
// the remaining videos to the destination one at a time.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/checkpoint"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
)

// State is a stage of the transfer state machine.
type State int

const (
	Idle State = iota
	Listing
	Resuming
	Transferring
	Completed
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case Resuming:
		return "resuming"
	case Transferring:
		return "transferring"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the engine stops in this state.
func (s State) Terminal() bool {
	return s == Completed || s == Aborted || s == Failed
}

func (s State) runStatus() models.RunStatus {
	switch s {
	case Completed:
		return models.RunCompleted
	case Aborted:
		return models.RunAborted
	case Failed:
		return models.RunFailed
	default:
		return models.RunRunning
	}
}

// Plan is the slice of the source sequence a run will attempt.
type Plan struct {
	Work        []string // Identifiers to insert, in source order
	ResumedFrom string   // Checkpoint value the plan was derived from, empty when none
	Stale       bool     // The checkpoint was present but not found in the sequence
}

// ResumePoint computes the work list for sequence given the stored checkpoint.
//
// Without a checkpoint the whole sequence is returned. A checkpoint found in the sequence (first exact match)
// yields everything strictly after it. A checkpoint that cannot be found is discarded and marked stale.
func ResumePoint(sequence []string, id string, ok bool) Plan {
	if !ok || id == "" {
		return Plan{Work: sequence}
	}

	for i, v := range sequence {
		if v == id {
			return Plan{Work: sequence[i+1:], ResumedFrom: id}
		}
	}
	return Plan{Work: sequence, ResumedFrom: id, Stale: true}
}

// TransferResult is the terminal report of a run.
type TransferResult struct {
	State           State
	Total           int    // Length of the listed source sequence
	Planned         int    // Items the run attempted to transfer
	Transferred     int    // Confirmed insertions
	ResumedFrom     string // Checkpoint the run resumed after
	StaleCheckpoint bool
	FailedItemID    string // Item whose insertion halted the run
	Err             error
}

// Summary is the one-line report printed at the end of a run.
func (r *TransferResult) Summary() string {
	return fmt.Sprintf("Successfully added %d of %d videos.", r.Transferred, r.Planned)
}

// RunRecorder persists run history. [repositories.RunRepository] satisfies it.
type RunRecorder interface {
	Create(run *models.TransferRun) error
	Update(run *models.TransferRun) error
}

// EngineOpts configures a [TransferEngine].
type EngineOpts struct {
	Lister   services.Lister
	Inserter services.Inserter
	Store    checkpoint.Store
	Recorder RunRecorder // Optional
	Logger   *log.Logger

	SourcePlaylistID      string
	DestinationPlaylistID string
	Delay                 time.Duration // Pause after every successful insertion
}

// TransferEngine copies the items of one playlist into another, recording progress after every success so an
// interrupted run can pick up where it stopped.
type TransferEngine struct {
	lister   services.Lister
	inserter services.Inserter
	store    checkpoint.Store
	recorder RunRecorder
	logger   *log.Logger

	source      string
	destination string
	delay       time.Duration

	mu    sync.Mutex
	state State
}

// NewTransferEngine creates a new TransferEngine in the Idle state.
func NewTransferEngine(opts EngineOpts) *TransferEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &TransferEngine{
		lister:      opts.Lister,
		inserter:    opts.Inserter,
		store:       opts.Store,
		recorder:    opts.Recorder,
		logger:      shared.WithLogger(logger, "source", opts.SourcePlaylistID, "destination", opts.DestinationPlaylistID),
		source:      opts.SourcePlaylistID,
		destination: opts.DestinationPlaylistID,
		delay:       opts.Delay,
		state:       Idle,
	}
}

// State returns the current state. Safe to call while Run is in progress.
func (e *TransferEngine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *TransferEngine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.Debug("state changed", "state", s)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes one transfer: Listing, Resuming, Transferring, then Completed, Aborted or Failed.
//
// The returned result is never nil. The error is non-nil exactly when the run ends Aborted or Failed and is the
// same value as result.Err.
func (e *TransferEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*TransferResult, error) {
	result := &TransferResult{State: Idle}
	run := e.startRun()

	defer func() {
		e.setState(result.State)
		e.finishRun(run, result)
		e.sendProgress(progress, finishUpdate(result))
	}()

	if err := e.validate(); err != nil {
		return e.fail(result, err)
	}

	if locker, ok := e.store.(checkpoint.Locker); ok {
		if err := locker.Lock(); err != nil {
			return e.fail(result, err)
		}
		defer func() {
			if err := locker.Unlock(); err != nil {
				e.logger.Warn("failed to release checkpoint lock", "error", err)
			}
		}()
	}

	e.setState(Listing)
	e.sendProgress(progress, listingSourceUpdate(e.source))

	items, err := e.lister.ListPlaylistItems(ctx, e.source)
	if err != nil {
		e.logger.Error("could not retrieve videos from source playlist", "error", err)
		return e.fail(result, err)
	}

	sequence := services.VideoIDs(items)
	result.Total = len(sequence)
	e.sendProgress(progress, listedSourceUpdate(result.Total))

	if result.Total == 0 {
		e.logger.Info("source playlist is empty, nothing to transfer")
		result.State = Completed
		return result, nil
	}

	e.setState(Resuming)
	id, ok, err := e.store.Read(ctx)
	if err != nil {
		return e.fail(result, fmt.Errorf("failed to read checkpoint: %w", err))
	}

	plan := ResumePoint(sequence, id, ok)
	result.ResumedFrom = plan.ResumedFrom
	result.StaleCheckpoint = plan.Stale
	result.Planned = len(plan.Work)
	if plan.Stale {
		e.logger.Warn("checkpoint not found in source playlist, starting from the beginning", "checkpoint", id)
	} else if plan.ResumedFrom != "" {
		e.logger.Info("resuming from checkpoint", "checkpoint", id, "remaining", result.Planned)
	}
	e.sendProgress(progress, resumeUpdate(plan, result.Total))

	if run != nil {
		run.SetPlan(result.Total, result.Planned)
		run.SetResumedFrom(plan.ResumedFrom)
	}

	e.setState(Transferring)
	if err := e.transfer(ctx, progress, plan.Work, result); err != nil {
		result.State = Aborted
		result.Err = err
		return result, err
	}

	if err := e.store.Clear(ctx); err != nil {
		e.logger.Warn("transfer finished but the checkpoint could not be cleared", "error", err)
	}
	result.State = Completed
	return result, nil
}

// transfer inserts each item of work in order and halts on the first failure.
func (e *TransferEngine) transfer(ctx context.Context, progress chan<- ProgressUpdate, work []string, result *TransferResult) error {
	total := len(work)

	for i, videoID := range work {
		step := i + 1

		if err := ctx.Err(); err != nil {
			e.logger.Warn("transfer interrupted", "transferred", result.Transferred, "remaining", total-i)
			return err
		}

		e.sendProgress(progress, insertingUpdate(step, total, videoID))

		if err := e.inserter.InsertPlaylistItem(ctx, e.destination, videoID); err != nil {
			message, reason := services.ErrorDetail(err)
			e.logger.Error("failed to add video", "video", videoID, "message", message, "reason", reason)
			e.sendProgress(progress, insertFailedUpdate(step, total, videoID, err))

			result.FailedItemID = videoID
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("%w: %s: %w", shared.ErrInsertFailed, videoID, err)
		}

		result.Transferred++
		e.logger.Info("added video", "video", videoID, "step", step, "total", total)

		if err := e.store.Write(ctx, videoID); err != nil {
			e.logger.Error("failed to save checkpoint", "video", videoID, "error", err)
			return fmt.Errorf("failed to save checkpoint after %s: %w", videoID, err)
		}
		e.sendProgress(progress, insertedUpdate(step, total, videoID))

		if step < total {
			if err := sleep(ctx, e.delay); err != nil {
				e.logger.Warn("transfer interrupted", "transferred", result.Transferred, "remaining", total-step)
				return err
			}
		}
	}
	return nil
}

func (e *TransferEngine) validate() error {
	switch {
	case e.lister == nil:
		return fmt.Errorf("%w: lister not initialized", shared.ErrServiceUnavailable)
	case e.inserter == nil:
		return fmt.Errorf("%w: inserter not initialized", shared.ErrServiceUnavailable)
	case e.store == nil:
		return fmt.Errorf("%w: checkpoint store not initialized", shared.ErrServiceUnavailable)
	case e.source == "" || e.destination == "":
		return fmt.Errorf("%w: source and destination playlist IDs are required", shared.ErrConfigIncomplete)
	}
	return nil
}

func (e *TransferEngine) fail(result *TransferResult, err error) (*TransferResult, error) {
	result.State = Failed
	result.Err = err
	return result, err
}

// startRun records a new run when a recorder is configured. Recorder errors are logged and the run continues.
func (e *TransferEngine) startRun() *models.TransferRun {
	if e.recorder == nil {
		return nil
	}

	run := models.NewTransferRun(e.source, e.destination)
	run.Start(time.Now())
	if err := e.recorder.Create(run); err != nil {
		e.logger.Warn("failed to record transfer run", "error", err)
		return nil
	}
	return run
}

func (e *TransferEngine) finishRun(run *models.TransferRun, result *TransferResult) {
	if run == nil {
		return
	}

	run.SetTransferred(result.Transferred)
	run.SetFailedItemID(result.FailedItemID)
	if result.Err != nil {
		message, reason := services.ErrorDetail(result.Err)
		if reason != "" {
			message = fmt.Sprintf("%s (%s)", message, reason)
		}
		run.SetErrorMessage(message)
	}
	run.Finish(result.State.runStatus(), time.Now())

	if err := e.recorder.Update(run); err != nil {
		e.logger.Warn("failed to update transfer run", "id", run.ID(), "error", err)
	}
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
