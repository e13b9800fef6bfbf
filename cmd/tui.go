package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist transfer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)
	if err := r.config.Validate(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/plcopy-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.newEngine(ctx)
	if err != nil {
		return err
	}
	store, err := r.checkpointStore()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Lister:        r.youtube(ctx),
		Engine:        engine,
		Store:         store,
		SourceID:      r.config.Transfer.SourcePlaylistID,
		DestinationID: r.config.Transfer.DestinationPlaylistID,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
