package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
)

func newTestManager(t *testing.T) *services.Manager {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:      filepath.Join(tmpDir, "test.db"),
		OrganizationsPath: filepath.Join(tmpDir, "organizations.json"),
		TicketingAPIURL:   "http://127.0.0.1:0",
		TicketingToken:    "test",
		SyncInterval:      time.Hour,
		CacheTTL:          time.Minute,
	}

	mgr, err := services.NewManager(cfg, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Logf("Close failed: %v", err)
		}
	})
	return mgr
}

// seedOrganization stores org1 with one synced event and two attendees.
func seedOrganization(t *testing.T, mgr *services.Manager) {
	t.Helper()

	if err := mgr.Organizations().Upsert(models.Organization{ID: "org1", Name: "Jazz Club"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	start := time.Date(2025, 3, 14, 19, 0, 0, 0, time.Local)
	event := &models.Event{
		ID:       "e1",
		OrgID:    "org1",
		Name:     "Friday Jam",
		Status:   models.EventStatusEnded,
		Start:    start,
		End:      start.Add(2 * time.Hour),
		Capacity: 100,
	}
	if err := mgr.Database().UpsertEvent(event); err != nil {
		t.Fatalf("UpsertEvent failed: %v", err)
	}

	attendees := []models.Attendee{
		{ID: "a1", EventID: "e1", FirstName: "Ann", Email: "ann@example.com", TicketType: "GA",
			Status: "attending", Quantity: 1, GrossCents: 2500, Created: start.AddDate(0, 0, -7)},
		{ID: "a2", EventID: "e1", FirstName: "Bob", Email: "bob@example.com", TicketType: "VIP",
			Status: "attending", Quantity: 1, GrossCents: 5000, Created: start.AddDate(0, 0, -3), CheckedIn: true},
	}
	if err := mgr.Database().ReplaceAttendees("e1", attendees); err != nil {
		t.Fatalf("ReplaceAttendees failed: %v", err)
	}
}
