package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
)

// ErrRunNotFound is returned when no live run matches the requested ID.
var ErrRunNotFound = errors.New("transfer run not found")

const runColumns = `
	id, sequence, source_playlist_id, destination_playlist_id, status,
	items_total, items_planned, items_transferred, resumed_from, failed_item_id,
	error_message, started_at, completed_at, created_at, updated_at, deleted_at
`

// RunRepository implements models.Repository[*models.TransferRun] for run history.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TransferRun] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with generated ID and sequence
func (r *RunRepository) Create(run *models.TransferRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "transfer_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO transfer_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.SourcePlaylistID(),
		run.DestinationPlaylistID(),
		string(run.Status()),
		run.ItemsTotal(),
		run.ItemsPlanned(),
		run.ItemsTransferred(),
		nullString(run.ResumedFrom()),
		nullString(run.FailedItemID()),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.TransferRun, error) {
	query := `SELECT ` + runColumns + ` FROM transfer_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Update writes the mutable fields of run back to the database
func (r *RunRepository) Update(run *models.TransferRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE transfer_runs
		SET status = ?, items_total = ?, items_planned = ?, items_transferred = ?,
			resumed_from = ?, failed_item_id = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.ItemsTotal(),
		run.ItemsPlanned(),
		run.ItemsTransferred(),
		nullString(run.ResumedFrom()),
		nullString(run.FailedItemID()),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer run: %w", err)
	}

	return requireAffected(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE transfer_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer run: %w", err)
	}
	return requireAffected(result, id)
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "status", "source_playlist_id", "destination_playlist_id" (strings) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.TransferRun, error) {
	query := `SELECT ` + runColumns + ` FROM transfer_runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, key := range []string{"status", "source_playlist_id", "destination_playlist_id"} {
		if v, ok := criteria[key].(string); ok && v != "" {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.TransferRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scan reads one row in runColumns order into a [models.TransferRun]
func (r *RunRepository) scan(row scanner) (*models.TransferRun, error) {
	var (
		id           string
		sequence     int
		source       string
		destination  string
		status       string
		total        int
		planned      int
		transferred  int
		resumedFrom  sql.NullString
		failedItemID sql.NullString
		errorMessage sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &source, &destination, &status,
		&total, &planned, &transferred, &resumedFrom, &failedItemID,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transfer run: %w", err)
	}

	run := models.NewTransferRun(source, destination)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetPlan(total, planned)
	run.SetTransferred(transferred)
	run.SetResumedFrom(resumedFrom.String)
	run.SetFailedItemID(failedItemID.String)
	run.SetErrorMessage(errorMessage.String)
	run.SetTimestamps(createdAt, updatedAt)
	run.Restore(models.RunStatus(status), nullTime(startedAt), nullTime(completedAt))
	run.SetDeletedAt(nullTime(deletedAt))

	return run, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", ErrRunNotFound, id)
	}
	return nil
}
