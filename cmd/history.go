package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/repositories"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

// runSummary is the JSON shape of a recorded run.
type runSummary struct {
	ID          string     `json:"id"`
	Source      string     `json:"source_playlist_id"`
	Destination string     `json:"destination_playlist_id"`
	Status      string     `json:"status"`
	Total       int        `json:"items_total"`
	Planned     int        `json:"items_planned"`
	Transferred int        `json:"items_transferred"`
	ResumedFrom string     `json:"resumed_from,omitempty"`
	FailedItem  string     `json:"failed_item_id,omitempty"`
	Error       string     `json:"error_message,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newRunSummary(run *models.TransferRun) runSummary {
	return runSummary{
		ID:          run.ID(),
		Source:      run.SourcePlaylistID(),
		Destination: run.DestinationPlaylistID(),
		Status:      string(run.Status()),
		Total:       run.ItemsTotal(),
		Planned:     run.ItemsPlanned(),
		Transferred: run.ItemsTransferred(),
		ResumedFrom: run.ResumedFrom(),
		FailedItem:  run.FailedItemID(),
		Error:       run.ErrorMessage(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
	}
}

// History prints recent transfer runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	if status != "" && !models.RunStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"status": status,
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]runSummary, len(runs))
		for i, run := range runs {
			summaries[i] = newRunSummary(run)
		}
		return r.writeJSON(summaries, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No transfer runs recorded.\n")
	}

	r.writePlainHeader("Transfer History")
	for _, run := range runs {
		started := "-"
		if t := run.StartedAt(); t != nil {
			started = t.Local().Format(time.DateTime)
		}

		r.writePlain("#%-4d %-10s %s  %s → %s  %d/%d",
			run.Sequence(), run.Status(), started,
			run.SourcePlaylistID(), run.DestinationPlaylistID(),
			run.ItemsTransferred(), run.ItemsPlanned(),
		)
		if run.ResumedFrom() != "" {
			r.writePlain("  (resumed after %s)", run.ResumedFrom())
		}
		if run.FailedItemID() != "" {
			r.writePlain("  failed on %s: %s", run.FailedItemID(), run.ErrorMessage())
		}
		r.writePlain("\n")
	}
	return nil
}
