package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CheckpointShow prints the stored checkpoint for the configured playlist pair.
func (r *Runner) CheckpointShow(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)

	store, err := r.checkpointStore()
	if err != nil {
		return err
	}

	id, ok, err := store.Read(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("No checkpoint found.\n")
	}
	return r.writePlain("%s\n", id)
}

// CheckpointClear removes the stored checkpoint so the next run starts from the beginning.
func (r *Runner) CheckpointClear(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)

	store, err := r.checkpointStore()
	if err != nil {
		return err
	}

	if err := store.Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("checkpoint cleared", "backend", r.config.Checkpoint.Backend)
	return r.writePlain("Checkpoint cleared.\n")
}
