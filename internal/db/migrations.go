package db

import (
	"context"
	"fmt"
)

// FixLegacyTimeFormats normalizes timestamps written by older builds, which
// stored the API's ISO form ("2025-03-14T19:00:00") or Go's time.Time String
// form (" +0000 UTC" suffix). strftime and range filters need sqlTimeLayout.
func (db *DB) FixLegacyTimeFormats() error {
	queries := []string{
		`UPDATE events
		 SET start_local = REPLACE(SUBSTR(start_local, 1, 19), 'T', ' ')
		 WHERE start_local LIKE '____-__-__T%' OR length(start_local) > 19`,

		`UPDATE events
		 SET end_local = REPLACE(SUBSTR(end_local, 1, 19), 'T', ' ')
		 WHERE end_local LIKE '____-__-__T%' OR length(end_local) > 19`,

		`UPDATE attendees
		 SET created = SUBSTR(created, 1, 19)
		 WHERE length(created) > 19 AND created LIKE '% UTC'`,

		`UPDATE sync_runs
		 SET started_at = SUBSTR(started_at, 1, 19)
		 WHERE length(started_at) > 19 AND started_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	return nil
}
