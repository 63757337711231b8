package db

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

func TestSyncRuns(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	seedDB(t, db)

	if _, err := db.GetLastSyncRun("org1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLastSyncRun() error = %v, want ErrNotFound", err)
	}

	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	run := &models.SyncRun{ID: "run-1", OrgID: "org1", StartedAt: start}
	if err := db.RecordSyncRun(run); err != nil {
		t.Fatalf("RecordSyncRun() failed: %v", err)
	}

	run.FinishedAt = start.Add(2 * time.Second)
	run.Events = 4
	run.Attendees = 3
	if err := db.RecordSyncRun(run); err != nil {
		t.Fatalf("RecordSyncRun() update failed: %v", err)
	}

	failed := &models.SyncRun{ID: "run-0", OrgID: "org1", StartedAt: start.Add(-time.Hour), FinishedAt: start.Add(-time.Hour), Error: "boom"}
	if err := db.RecordSyncRun(failed); err != nil {
		t.Fatalf("RecordSyncRun() failed: %v", err)
	}

	got, err := db.GetLastSyncRun("org1")
	if err != nil {
		t.Fatalf("GetLastSyncRun() failed: %v", err)
	}
	if got.ID != "run-1" || got.Events != 4 || !got.Succeeded() || got.Duration() != 2*time.Second {
		t.Errorf("GetLastSyncRun() = %+v", got)
	}

	orgs, _ := db.ListOrganizations()
	if len(orgs) != 1 || !orgs[0].LastSynced.Equal(run.FinishedAt) {
		t.Errorf("LastSynced = %v, want %v", orgs[0].LastSynced, run.FinishedAt)
	}
}

func TestCacheEntries(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	if _, _, ok, err := db.GetCacheEntry("boxoffice_x"); ok || err != nil {
		t.Fatalf("GetCacheEntry() on empty table: ok=%v err=%v", ok, err)
	}

	if err := db.PutCacheEntry("boxoffice_events_1", []byte(`[1]`), now.Add(time.Minute)); err != nil {
		t.Fatalf("PutCacheEntry() failed: %v", err)
	}
	if err := db.PutCacheEntry("boxoffice_events_1", []byte(`[2]`), now.Add(2*time.Minute)); err != nil {
		t.Fatalf("PutCacheEntry() overwrite failed: %v", err)
	}
	if err := db.PutCacheEntry("boxoffice_attendees_9", []byte(`[]`), now.Add(-time.Minute)); err != nil {
		t.Fatalf("PutCacheEntry() failed: %v", err)
	}
	if err := db.PutCacheEntry("other_key", []byte(`x`), now.Add(time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() failed: %v", err)
	}

	val, exp, ok, err := db.GetCacheEntry("boxoffice_events_1")
	if err != nil || !ok {
		t.Fatalf("GetCacheEntry() ok=%v err=%v", ok, err)
	}
	if string(val) != "[2]" || !exp.Equal(now.Add(2*time.Minute)) {
		t.Errorf("GetCacheEntry() = %s, %v", val, exp)
	}

	purged, err := db.PurgeExpiredCacheEntries(now)
	if err != nil || purged != 1 {
		t.Errorf("PurgeExpiredCacheEntries() = %d, %v; want 1", purged, err)
	}

	deleted, err := db.DeleteCacheEntries("boxoffice_")
	if err != nil || deleted != 1 {
		t.Errorf("DeleteCacheEntries() = %d, %v; want 1", deleted, err)
	}
	if _, _, ok, _ := db.GetCacheEntry("other_key"); !ok {
		t.Error("entry outside the prefix should survive")
	}
}
