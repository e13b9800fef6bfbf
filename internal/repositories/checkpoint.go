package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plcopy/internal/checkpoint"
	"github.com/desertthunder/plcopy/internal/shared"
)

// CheckpointRepository implements [checkpoint.Store] on the checkpoints table.
//
// Each source/destination playlist pair owns one row, so several transfers can share a database.
type CheckpointRepository struct {
	db          *sql.DB
	source      string
	destination string
}

var _ checkpoint.Store = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a store scoped to the given playlist pair
func NewCheckpointRepository(db *sql.DB, source, destination string) *CheckpointRepository {
	return &CheckpointRepository{db: db, source: source, destination: destination}
}

// Read returns the stored identifier for this pair.
func (r *CheckpointRepository) Read(ctx context.Context) (string, bool, error) {
	query := `
		SELECT video_id FROM checkpoints
		WHERE source_playlist_id = ? AND destination_playlist_id = ?
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, r.source, r.destination).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", shared.ErrCheckpointIO, err)
	}
	return id, id != "", nil
}

// Write upserts the identifier for this pair.
func (r *CheckpointRepository) Write(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty checkpoint identifier", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO checkpoints (source_playlist_id, destination_playlist_id, video_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_playlist_id, destination_playlist_id)
		DO UPDATE SET video_id = excluded.video_id, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, r.source, r.destination, id, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCheckpointIO, err)
	}
	return nil
}

// Clear deletes the row for this pair.
func (r *CheckpointRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM checkpoints WHERE source_playlist_id = ? AND destination_playlist_id = ?`
	if _, err := r.db.ExecContext(ctx, query, r.source, r.destination); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCheckpointIO, err)
	}
	return nil
}
