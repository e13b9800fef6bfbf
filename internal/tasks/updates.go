package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListSource Phase = iota
	Resume
	InsertItems
	Finish
)

func (p Phase) String() string {
	switch p {
	case ListSource:
		return "list_source"
	case Resume:
		return "resume"
	case InsertItems:
		return "insert_items"
	case Finish:
		return "finish"
	default:
		return ""
	}
}

func listingSourceUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListSource,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching all videos from source playlist %s...", playlistID),
	}
}

func listedSourceUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d videos in the source playlist.", count),
		Data:    count,
	}
}

func resumeUpdate(plan Plan, total int) ProgressUpdate {
	var msg string
	switch {
	case plan.Stale:
		msg = fmt.Sprintf("Checkpoint %s not found in source playlist, starting from the beginning.", plan.ResumedFrom)
	case plan.ResumedFrom != "":
		msg = fmt.Sprintf("Resuming after video %s (%d of %d remaining).", plan.ResumedFrom, len(plan.Work), total)
	default:
		msg = "No checkpoint found, starting from the beginning."
	}
	return ProgressUpdate{
		Phase:   Resume,
		Step:    total - len(plan.Work),
		Total:   total,
		Message: msg,
		Data:    plan,
	}
}

func insertingUpdate(step, total int, videoID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertItems,
		Step:    step - 1,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding video %s...", step, total, videoID),
		Data:    videoID,
	}
}

func insertedUpdate(step, total int, videoID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, videoID),
		Data:    videoID,
	}
}

func insertFailedUpdate(step, total int, videoID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertItems,
		Step:    step - 1,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, videoID, err),
		Data:    videoID,
	}
}

func finishUpdate(result *TransferResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finish,
		Step:    result.Transferred,
		Total:   result.Planned,
		Message: result.Summary(),
		Data:    result,
	}
}
