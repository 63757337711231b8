package db

import (
	"database/sql"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

var timeFormats = []string{
	sqlTimeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02",
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

// parseTimeString parses an instant stored in UTC.
func parseTimeString(s string) (time.Time, bool) {
	return parseTimeIn(s, time.UTC)
}

// parseLocalTime parses an event wall-clock time.
func parseLocalTime(s string) (time.Time, bool) {
	return parseTimeIn(s, time.Local)
}

func parseTimeIn(s string, loc *time.Location) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func nullTime(ns sql.NullString, parse func(string) (time.Time, bool)) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, _ := parse(ns.String)
	return t
}

// formatUTC formats an instant for storage, or NULL when zero.
func formatUTC(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(sqlTimeLayout)
}

// formatLocal formats a wall-clock time for storage, or NULL when zero.
func formatLocal(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(sqlTimeLayout)
}

// rangeStart returns the lower bound argument for sqlRangeFilterClause.
func rangeStart(r models.DateRange) string {
	from, _ := r.Bounds(nowFunc())
	if from.IsZero() {
		return ""
	}
	return from.In(time.Local).Format(sqlTimeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
