package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/tasks"
	"github.com/desertthunder/plcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// Transfer copies the source playlist into the destination, narrating each step.
//
// Returns an error (non-zero exit) when the configuration is incomplete, the source cannot be listed or the
// transfer stops before every planned video is added.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)
	if err := r.config.Validate(); err != nil {
		return err
	}

	engine, err := r.newEngine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting transfer",
		"source", r.config.Transfer.SourcePlaylistID,
		"dest", r.config.Transfer.DestinationPlaylistID,
		"delay", r.config.Transfer.Delay(),
	)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.narrate(update)
		}
	}()

	result, runErr := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	r.writeSummary(result)
	return runErr
}

// narrate prints one progress update as a line of plain output.
func (r *Runner) narrate(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ListSource:
		r.writePlain("%s\n", update.Message)
	case tasks.Resume:
		if plan, ok := update.Data.(tasks.Plan); ok && plan.Stale {
			r.writePlain("%s\n", ui.Warning(update.Message))
		} else {
			r.writePlain("%s\n", update.Message)
		}
	case tasks.InsertItems:
		r.writePlain("   %s\n", update.Message)
	}
}

func (r *Runner) writeSummary(result *tasks.TransferResult) {
	r.writePlain("\n")

	switch result.State {
	case tasks.Completed:
		r.writePlain("%s\n", ui.Success(result.Summary()))
	case tasks.Aborted:
		r.writePlain("%s\n", ui.Warning(result.Summary()))
		if result.FailedItemID != "" {
			message, reason := services.ErrorDetail(result.Err)
			r.writePlain("Failed to add video %s\n", result.FailedItemID)
			r.writePlain("  Error message: %s\n", message)
			if reason != "" {
				r.writePlain("  Reason: %s\n", reason)
			}
		}
		r.writePlain("%s\n", ui.Muted("Run the command again to resume from the last successful video."))
	case tasks.Failed:
		r.writePlain("%s\n", ui.Error(fmt.Sprintf("Transfer failed: %v", result.Err)))
		r.writePlain("%s\n", result.Summary())
	}
}
