package info

import (
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
)

func TestNew(t *testing.T) {
	m := New(app.NewState(), &config.Config{}, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.policy == nil {
		t.Error("nil policy should fall back to defaults")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(), nil, nil)

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_View(t *testing.T) {
	cfg := &config.Config{
		DatabasePath:    "/tmp/boxoffice.db",
		TicketingAPIURL: "https://tickets.example.com",
		SyncInterval:    15 * time.Minute,
	}
	m := New(app.NewState(), cfg, config.DefaultPolicy())
	m.SetSize(100, 120)

	view := m.View()
	for _, want := range []string{
		"/tmp/boxoffice.db",
		"https://tickets.example.com",
		"15m0s",
		"north",
		"below 40.0%",
		"No store statistics yet",
		"About Box Office TUI",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_View_NoConfig(t *testing.T) {
	m := New(app.NewState(), nil, nil)
	m.SetSize(100, 120)

	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("View should note the missing configuration")
	}
}

func TestModel_View_SyncStatus(t *testing.T) {
	state := app.NewState()
	state.SetStats(services.StatsEvent{StoreStats: models.StoreStats{Organizations: 2, Events: 1500, Attendees: 42}})
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	state.SetLastRun(&models.SyncRun{
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Events:     3,
		Attendees:  40,
		Error:      "rate limited",
	})
	state.SetLoading(app.ResourceSync, true)

	m := New(state, nil, nil)
	m.SetSize(100, 120)

	view := m.View()
	for _, want := range []string{
		"1,500",
		"never",
		"2025-03-01 12:00:00",
		"1.5s",
		"3 events, 40 attendees",
		"rate limited",
		"Sync in progress...",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil, nil)
	if len(m.ShortHelp()) != 4 {
		t.Errorf("ShortHelp len = %d, want 4", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 1 {
		t.Errorf("FullHelp len = %d, want 1", len(m.FullHelp()))
	}
}
