package organizations

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "organizations.json")
	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, path
}

func waitFor(t *testing.T, svc *Service, want EventType) {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event %d", want)
		}
	}
}

func TestNew_CreatesFile(t *testing.T) {
	svc, path := newTestService(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("organizations file was not created: %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
	if svc.GetActive() != nil {
		t.Error("GetActive() should be nil for an empty list")
	}
	if svc.Path() != path {
		t.Errorf("Path() = %q, want %q", svc.Path(), path)
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organizations.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err == nil {
		t.Fatal("New() should fail for an invalid file")
	}
}

func TestNew_LoadsExistingFormats(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantCount  int
		wantActive string
	}{
		{
			name:       "current format",
			content:    `{"active":"2","organizations":[{"id":"1","name":"A"},{"id":"2","name":"B","addedAt":1700000000000}],"version":1}`,
			wantCount:  2,
			wantActive: "2",
		},
		{
			name:       "bare array",
			content:    `[{"id":"1","name":"A"},{"name":"no id"}]`,
			wantCount:  1,
			wantActive: "1",
		},
		{
			name:       "stale active falls back to first",
			content:    `{"active":"gone","organizations":[{"id":"1"}]}`,
			wantCount:  1,
			wantActive: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "organizations.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			svc, err := New(path)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			defer func() { _ = svc.Close() }()

			if svc.Count() != tt.wantCount {
				t.Errorf("Count() = %d, want %d", svc.Count(), tt.wantCount)
			}
			active := svc.GetActive()
			if active == nil || active.ID != tt.wantActive {
				t.Fatalf("GetActive() = %+v, want ID %q", active, tt.wantActive)
			}
			if !active.IsActive {
				t.Error("active organization should have IsActive set")
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	svc, path := newTestService(t)

	if err := svc.Upsert(models.Organization{ID: "1", Name: "Nova"}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	org, err := svc.Get("1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if org.AddedAt.IsZero() {
		t.Error("AddedAt should be set on insert")
	}
	if !org.IsActive {
		t.Error("first organization should be active")
	}

	addedAt := org.AddedAt
	if err := svc.Upsert(models.Organization{ID: "1", Name: "Nova Hall"}); err != nil {
		t.Fatalf("Upsert() update failed: %v", err)
	}
	org, _ = svc.Get("1")
	if org.Name != "Nova Hall" {
		t.Errorf("Name = %q, want %q", org.Name, "Nova Hall")
	}
	if !org.AddedAt.Equal(addedAt) {
		t.Error("AddedAt should be preserved on update")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if len(file.Organizations) != 1 || file.Organizations[0].Name != "Nova Hall" {
		t.Errorf("saved organizations = %+v", file.Organizations)
	}
	if file.Version != 1 {
		t.Errorf("Version = %d, want 1", file.Version)
	}
}

func TestUpsert_RequiresID(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Upsert(models.Organization{Name: "anonymous"}); err == nil {
		t.Fatal("Upsert() should fail without an ID")
	}
}

func TestSetActiveAndCycle(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"1", "2", "3"} {
		if err := svc.Upsert(models.Organization{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.SetActive("2"); err != nil {
		t.Fatalf("SetActive() failed: %v", err)
	}
	if got := svc.GetActive().ID; got != "2" {
		t.Errorf("active = %q, want 2", got)
	}

	err := svc.SetActive("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive(missing) error = %v, want ErrNotFound", err)
	}

	want := []string{"3", "1", "2"}
	for _, w := range want {
		org, err := svc.Cycle()
		if err != nil {
			t.Fatalf("Cycle() failed: %v", err)
		}
		if org.ID != w {
			t.Errorf("Cycle() = %q, want %q", org.ID, w)
		}
	}

	activeCount := 0
	for _, org := range svc.GetOrganizations() {
		if org.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("%d organizations marked active, want 1", activeCount)
	}
}

func TestCycle_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Cycle(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cycle() error = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"1", "2"} {
		if err := svc.Upsert(models.Organization{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.SetActive("1"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Remove("1"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if svc.Count() != 1 {
		t.Errorf("Count() = %d, want 1", svc.Count())
	}
	if got := svc.GetActive().ID; got != "2" {
		t.Errorf("active after removal = %q, want 2", got)
	}

	if err := svc.Remove("1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestMarkSynced(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Upsert(models.Organization{ID: "1", Name: "Nova"}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := svc.MarkSynced("1", at); err != nil {
		t.Fatalf("MarkSynced() failed: %v", err)
	}

	org, _ := svc.Get("1")
	if !org.LastSynced.Equal(at) {
		t.Errorf("LastSynced = %v, want %v", org.LastSynced, at)
	}
	if org.Name != "Nova" {
		t.Errorf("Name = %q, MarkSynced should not clear it", org.Name)
	}

	if err := svc.MarkSynced("missing", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSynced(missing) error = %v, want ErrNotFound", err)
	}
}

func TestEvents(t *testing.T) {
	svc, _ := newTestService(t)
	waitFor(t, svc, EventLoaded)

	if err := svc.Upsert(models.Organization{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, svc, EventAdded)

	if err := svc.SetActive("1"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, svc, EventActiveChanged)
}

func TestWatchFileChange(t *testing.T) {
	svc, path := newTestService(t)
	waitFor(t, svc, EventLoaded)

	content := []byte(`{"active":"w1","organizations":[{"id":"w1","name":"Watched"}],"version":1}`)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	waitFor(t, svc, EventChanged)

	orgs := svc.GetOrganizations()
	if len(orgs) != 1 || orgs[0].Name != "Watched" {
		t.Fatalf("organizations after reload = %+v", orgs)
	}
}

func TestSendEvent_DropsOldest(t *testing.T) {
	svc, _ := newTestService(t)

	for range cap(svc.eventChan) + 10 {
		svc.sendEvent(Event{Type: EventChanged})
	}
	svc.sendEvent(Event{Type: EventRemoved})

	if len(svc.eventChan) != cap(svc.eventChan) {
		t.Errorf("channel len = %d, want %d", len(svc.eventChan), cap(svc.eventChan))
	}
}
