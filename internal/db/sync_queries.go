package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// RecordSyncRun inserts or updates a sync run.
func (db *DB) RecordSyncRun(run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, org_id, started_at, finished_at, events, attendees, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			events = excluded.events,
			attendees = excluded.attendees,
			error = excluded.error
	`

	_, err := db.ExecContext(context.Background(), query,
		run.ID, run.OrgID, formatUTC(run.StartedAt), formatUTC(run.FinishedAt),
		run.Events, run.Attendees, nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// GetLastSyncRun returns the most recently started run for an organization,
// or ErrNotFound.
func (db *DB) GetLastSyncRun(orgID string) (*models.SyncRun, error) {
	query := `
		SELECT id, org_id, started_at, finished_at, events, attendees, error
		FROM sync_runs
		WHERE org_id = ?
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.SyncRun
	var started string
	var finished, errStr sql.NullString
	err := db.QueryRowContext(context.Background(), query, orgID).Scan(
		&run.ID, &run.OrgID, &started, &finished, &run.Events, &run.Attendees, &errStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync run for %s: %w", orgID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last sync run: %w", err)
	}

	run.StartedAt, _ = parseTimeString(started)
	run.FinishedAt = nullTime(finished, parseTimeString)
	run.Error = errStr.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
