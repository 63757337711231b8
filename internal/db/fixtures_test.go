package db

import (
	"testing"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

func localTime(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

// seedDB stores one organization with four events:
//
//	e1 Fri 2025-01-10, two attendees
//	e2 Sat 2025-01-25, one attendee (repeat customer)
//	e3 Fri 2025-02-14, synced with no attendees
//	e4 Sat 2025-03-01, attendees never synced
func seedDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.UpsertOrganization(&models.Organization{ID: "org1", Name: "Nova Club"}); err != nil {
		t.Fatalf("UpsertOrganization failed: %v", err)
	}

	events := []models.Event{
		{ID: "e1", OrgID: "org1", Name: "Opening Night", Status: models.EventStatusEnded, Start: localTime(2025, 1, 10, 19), End: localTime(2025, 1, 10, 23), Capacity: 100},
		{ID: "e2", OrgID: "org1", Name: "Late Show", Status: models.EventStatusEnded, Start: localTime(2025, 1, 25, 20), Capacity: 50},
		{ID: "e3", OrgID: "org1", Name: "Valentine", Status: models.EventStatusEnded, Start: localTime(2025, 2, 14, 19), IsFree: true},
		{ID: "e4", OrgID: "org1", Name: "Spring Gala", Status: models.EventStatusLive, Start: localTime(2025, 3, 1, 18), Capacity: 200},
	}
	for i := range events {
		if err := db.UpsertEvent(&events[i]); err != nil {
			t.Fatalf("UpsertEvent failed: %v", err)
		}
	}

	created := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	mustReplace(t, db, "e1", []models.Attendee{
		{ID: "a1", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", TicketType: "GA", GrossCents: 2000, CheckedIn: true, Created: created},
		{ID: "a2", FirstName: "Bob", Email: "bob@example.com", TicketType: "VIP", GrossCents: 5000, Created: created.Add(time.Hour)},
	})
	mustReplace(t, db, "e2", []models.Attendee{
		{ID: "a3", FirstName: "Alice", LastName: "Smith", Email: "Alice@Example.com", TicketType: "GA", GrossCents: 2000, CheckedIn: true},
	})
	mustReplace(t, db, "e3", nil)
}

func mustReplace(t *testing.T, db *DB, eventID string, attendees []models.Attendee) {
	t.Helper()
	if err := db.ReplaceAttendees(eventID, attendees); err != nil {
		t.Fatalf("ReplaceAttendees(%s) failed: %v", eventID, err)
	}
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })
}
