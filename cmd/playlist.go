package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/urfave/cli/v3"
)

// List prints the video IDs of the source playlist in order, one per line.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)

	source := r.config.Transfer.SourcePlaylistID
	if source == "" {
		return fmt.Errorf("%w: missing transfer.source_playlist_id", shared.ErrConfigIncomplete)
	}
	if r.service == nil && r.config.Credentials.YouTube.APIKey == "" {
		return fmt.Errorf("%w: missing credentials.youtube.api_key", shared.ErrConfigIncomplete)
	}

	items, err := r.youtube(ctx).ListPlaylistItems(ctx, source)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if cmd.IsSet("format") {
		return r.export(cmd, source, items)
	}

	for _, id := range services.VideoIDs(items) {
		if err := r.writePlain("%s\n", id); err != nil {
			return err
		}
	}
	r.logger.Debug("listed source playlist", "playlist", source, "count", len(items))
	return nil
}

// export renders the listing with the formatter and writes it to --output.
func (r *Runner) export(cmd *cli.Command, source string, items []services.PlaylistItem) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if cmd.String("output") == "-" {
		data, err := formatter.Render(format, source, items)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(format, source, items, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("exported playlist", "format", format, "file", path, "count", len(items))
	r.writePlain("Exported %d videos to %s\n", len(items), path)
	return nil
}
