package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// UpsertOrganization inserts or renames an organization.
func (db *DB) UpsertOrganization(org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(context.Background(), query, org.ID, org.Name, formatUTC(nowFunc()))
	if err != nil {
		return fmt.Errorf("failed to upsert organization: %w", err)
	}
	return nil
}

// ListOrganizations returns stored organizations with their last successful sync.
func (db *DB) ListOrganizations() ([]models.Organization, error) {
	query := `
		SELECT o.id, o.name,
			(SELECT MAX(s.finished_at) FROM sync_runs s
			 WHERE s.org_id = o.id AND s.error IS NULL AND s.finished_at IS NOT NULL)
		FROM organizations o
		ORDER BY o.name, o.id
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		var lastSynced sql.NullString
		if err := rows.Scan(&org.ID, &org.Name, &lastSynced); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		org.LastSynced = nullTime(lastSynced, parseTimeString)
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// UpsertEvent inserts or updates an event, keeping its attendees.
func (db *DB) UpsertEvent(e *models.Event) error {
	query := `
		INSERT INTO events (id, org_id, name, status, url, start_local, end_local, capacity, is_free, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			org_id = excluded.org_id,
			name = excluded.name,
			status = excluded.status,
			url = excluded.url,
			start_local = excluded.start_local,
			end_local = excluded.end_local,
			capacity = excluded.capacity,
			is_free = excluded.is_free,
			updated_at = excluded.updated_at
	`

	updated := e.UpdatedAt
	if updated.IsZero() {
		updated = nowFunc()
	}

	_, err := db.ExecContext(context.Background(), query,
		e.ID, e.OrgID, e.Name, e.Status, e.URL,
		formatLocal(e.Start), formatLocal(e.End),
		e.Capacity, boolToInt(e.IsFree), formatUTC(updated),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
	}
	return nil
}

// ReplaceAttendees swaps the stored attendee list of an event in one
// transaction and marks the event's attendees as synced.
func (db *DB) ReplaceAttendees(eventID string, attendees []models.Attendee) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendees WHERE event_id = ?", eventID); err != nil {
		return fmt.Errorf("failed to delete attendees: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO attendees (
			id, event_id, first_name, last_name, email, ticket_type, status,
			quantity, gross_cents, checked_in, created
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare attendee insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range attendees {
		a := &attendees[i]
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, eventID, a.FirstName, a.LastName, a.Email, a.TicketType, a.Status,
			qty, a.GrossCents, boolToInt(a.CheckedIn), formatUTC(a.Created),
		); err != nil {
			return fmt.Errorf("failed to insert attendee %s: %w", a.ID, err)
		}
	}

	res, err := tx.ExecContext(ctx, "UPDATE events SET attendees_synced_at = ? WHERE id = ?", formatUTC(nowFunc()), eventID)
	if err != nil {
		return fmt.Errorf("failed to mark attendees synced: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}

	return tx.Commit()
}

const eventColumns = `e.id, e.org_id, e.name, e.status, e.url, e.start_local, e.end_local, e.capacity, e.is_free, e.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var start, end, updated sql.NullString
	var isFree int
	if err := row.Scan(&e.ID, &e.OrgID, &e.Name, &e.Status, &e.URL, &start, &end, &e.Capacity, &isFree, &updated); err != nil {
		return e, err
	}
	e.Start = nullTime(start, parseLocalTime)
	e.End = nullTime(end, parseLocalTime)
	e.UpdatedAt = nullTime(updated, parseTimeString)
	e.IsFree = isFree != 0
	return e, nil
}

// GetEvents returns an organization's events in the range, newest first.
func (db *DB) GetEvents(orgID string, r models.DateRange) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events e
		WHERE e.org_id = ? ` + sqlRangeFilterClause + `
		ORDER BY e.start_local DESC
	`

	rows, err := db.QueryContext(context.Background(), query, orgID, rangeStart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetEvent returns one event by ID or ErrNotFound.
func (db *DB) GetEvent(id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = ?`

	e, err := scanEvent(db.QueryRowContext(context.Background(), query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return &e, nil
}

// GetAttendees returns the stored attendees of an event ordered by purchase time.
func (db *DB) GetAttendees(eventID string) ([]models.Attendee, error) {
	query := `
		SELECT id, event_id, first_name, last_name, email, ticket_type, status,
			quantity, gross_cents, checked_in, created
		FROM attendees
		WHERE event_id = ?
		ORDER BY created, id
	`

	rows, err := db.QueryContext(context.Background(), query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attendees []models.Attendee
	for rows.Next() {
		var a models.Attendee
		var created sql.NullString
		var checkedIn int
		if err := rows.Scan(
			&a.ID, &a.EventID, &a.FirstName, &a.LastName, &a.Email, &a.TicketType, &a.Status,
			&a.Quantity, &a.GrossCents, &checkedIn, &created,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		a.CheckedIn = checkedIn != 0
		a.Created = nullTime(created, parseTimeString)
		attendees = append(attendees, a)
	}

	return attendees, rows.Err()
}

// GetStats summarizes table sizes and the latest sync.
func (db *DB) GetStats() (*models.StoreStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM organizations),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM attendees),
			(SELECT COUNT(*) FROM cache_entries),
			(SELECT MAX(finished_at) FROM sync_runs WHERE error IS NULL)
	`

	var s models.StoreStats
	var lastSync sql.NullString
	err := db.QueryRowContext(context.Background(), query).Scan(
		&s.Organizations, &s.Events, &s.Attendees, &s.CacheEntries, &lastSync,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	s.LastSync = nullTime(lastSync, parseTimeString)
	return &s, nil
}
