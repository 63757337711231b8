package app

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/export"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/services/ticketing"
)

type stubTab struct {
	msgs   []tea.Msg
	width  int
	height int
}

func (s *stubTab) Init() tea.Cmd { return nil }

func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubTab) View() string { return strings.Repeat("stub tab\n", 40) }

func (s *stubTab) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *stubTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stub action"))}
}

func (s *stubTab) FullHelp() [][]key.Binding { return nil }

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 4 {
		t.Errorf("Should have 4 tab placeholders, got %d", len(model.tabs))
	}
	if model.exportDir == "" {
		t.Error("export directory should default to a path")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if cmd := model.Init(); cmd == nil {
		t.Error("Init returned nil command")
	}
	if n := model.state.GetNotifications(); len(n) != 1 || n[0].ID != LoadingNotificationID {
		t.Errorf("Init should show the loading notification, got %v", n)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	tab := &stubTab{}
	model.SetTabs([]Tab{tab})

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tab.width != 100 || tab.height != 45 {
		t.Errorf("tab size = %dx%d, want 100x45", tab.width, tab.height)
	}
}

func TestModel_TabKeys(t *testing.T) {
	model := NewModel(nil)
	model.SetTabs([]Tab{&stubTab{}, &stubTab{}, &stubTab{}, &stubTab{}})

	tests := []struct {
		want TabID
		key  rune
	}{
		{TabPredictions, '2'},
		{TabEvents, '3'},
		{TabInfo, '4'},
		{TabDashboard, '1'},
	}
	for _, tt := range tests {
		cmd := model.handleKeyMsg(keyRune(tt.key))
		if model.activeTab != tt.want {
			t.Errorf("key %c: activeTab = %v, want %v", tt.key, model.activeTab, tt.want)
		}
		if cmd == nil {
			t.Errorf("key %c should return a TabSwitchMsg command", tt.key)
		}
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabPredictions {
		t.Errorf("tab: activeTab = %v, want Predictions", model.activeTab)
	}
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabInfo {
		t.Errorf("shift+tab wrap: activeTab = %v, want Info", model.activeTab)
	}
}

func TestModel_TabSwitchMsg(t *testing.T) {
	model := NewModel(nil)
	model.Update(TabSwitchMsg{Tab: TabEvents})
	if model.activeTab != TabEvents {
		t.Errorf("activeTab = %v, want Events", model.activeTab)
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.SetTabs([]Tab{&stubTab{}})
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	model.handleKeyMsg(keyRune('?'))
	if !model.showHelp {
		t.Fatal("? should open help")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help overlay missing")
	}
	if !strings.Contains(view, "stub action") {
		t.Error("help should list the active tab bindings")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("ToggleHelpMsg should open help")
	}
}

func TestModel_Quit(t *testing.T) {
	model := NewModel(nil)
	cmd := model.handleKeyMsg(keyRune('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_CycleDateRange(t *testing.T) {
	model := NewModel(nil)

	msgs := collect(model.handleKeyMsg(keyRune('t')))
	if model.state.GetDateRange() != models.DateRangeLast30Days {
		t.Errorf("DateRange = %v, want last 30 days", model.state.GetDateRange())
	}
	changed, ok := findMsg[DateRangeChangedMsg](msgs)
	if !ok || changed.Range != models.DateRangeLast30Days {
		t.Errorf("expected DateRangeChangedMsg, got %v", msgs)
	}
}

func TestModel_CycleDateRange_UpdatesManager(t *testing.T) {
	mgr := newTestManager(t)
	seedOrganization(t, mgr)
	model := NewModel(mgr)
	model.state.SetOrganizations(mgr.Organizations().GetOrganizations(), mgr.Organizations().GetActive())

	msgs := collect(model.cycleDateRange())
	if mgr.DateRange() != models.DateRangeLast30Days {
		t.Errorf("manager range = %v, want last 30 days", mgr.DateRange())
	}
	loaded, ok := findMsg[SnapshotLoadedMsg](msgs)
	if !ok {
		t.Fatalf("expected a snapshot reload, got %v", msgs)
	}
	if loaded.Error != nil {
		t.Fatalf("snapshot failed: %v", loaded.Error)
	}
	if loaded.Snapshot.Range != models.DateRangeLast30Days.Key() {
		t.Errorf("Range = %q, want %q", loaded.Snapshot.Range, models.DateRangeLast30Days.Key())
	}
}

func TestModel_InitialDataAndSnapshot(t *testing.T) {
	mgr := newTestManager(t)
	seedOrganization(t, mgr)
	model := NewModel(mgr)
	model.Init()

	orgs, stats := mgr.InitialState()
	_, cmd := model.Update(InitialDataLoadedMsg{Organizations: orgs, Stats: stats})

	if model.state.IsInitialLoading() {
		t.Error("initial loading should be finished")
	}
	if model.state.ActiveID() != "org1" {
		t.Errorf("ActiveID = %q, want org1", model.state.ActiveID())
	}

	loaded, ok := findMsg[SnapshotLoadedMsg](collect(cmd))
	if !ok {
		t.Fatal("initial data should trigger a snapshot load")
	}
	model.Update(loaded)

	if model.state.GetSnapshot() == nil {
		t.Fatal("snapshot should be stored")
	}
	if model.state.AnyLoading() {
		t.Errorf("still loading: %v", model.state.GetLoadingResources())
	}
	for _, n := range model.state.GetNotifications() {
		if n.ID == LoadingNotificationID {
			t.Error("loading notification should be cleared")
		}
	}
}

func TestModel_InitialData_NoOrganization(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(InitialDataLoadedMsg{})

	msgs := collect(cmd)
	add, ok := findMsg[AddNotificationMsg](msgs)
	if !ok || add.Type != NotificationWarning {
		t.Errorf("expected a warning, got %v", msgs)
	}
}

func TestModel_SnapshotForOtherOrganizationIgnored(t *testing.T) {
	model := NewModel(nil)
	orgs := []models.Organization{{ID: "org1"}}
	model.state.SetOrganizations(orgs, &orgs[0])

	model.Update(SnapshotLoadedMsg{Snapshot: &analytics.Snapshot{OrgID: "org2"}})
	if model.state.GetSnapshot() != nil {
		t.Error("snapshot for another organization should be ignored")
	}

	_, cmd := model.Update(SnapshotLoadedMsg{Error: errors.New("boom")})
	add, ok := findMsg[AddNotificationMsg](collect(cmd))
	if !ok || add.Type != NotificationError {
		t.Error("snapshot errors should be reported")
	}

	_, cmd = model.Update(SnapshotLoadedMsg{Error: services.ErrNoOrganization})
	if _, ok := findMsg[AddNotificationMsg](collect(cmd)); ok {
		t.Error("missing organization should not raise a toast")
	}
}

func TestModel_ServiceEvents(t *testing.T) {
	model := NewModel(nil)
	orgs := []models.Organization{{ID: "org1", Name: "Jazz Club"}}
	model.state.SetOrganizations(orgs, &orgs[0])

	model.handleServiceEvent(services.SyncStartedEvent{OrgID: "org1"})
	if !model.state.IsSyncing() {
		t.Error("SyncStartedEvent should mark syncing")
	}

	run := &models.SyncRun{ID: "run1", OrgID: "org1", Events: 4, Attendees: 9}
	msgs := collect(model.handleServiceEvent(services.SyncCompletedEvent{OrgID: "org1", Run: run}))
	if model.state.IsSyncing() {
		t.Error("SyncCompletedEvent should clear syncing")
	}
	if model.state.GetLastRun() != run {
		t.Error("last run should be recorded")
	}
	add, ok := findMsg[AddNotificationMsg](msgs)
	if !ok || add.Type != NotificationSuccess || !strings.Contains(add.Message, "4 events") {
		t.Errorf("expected success toast, got %v", msgs)
	}

	partial := &models.SyncRun{OrgID: "org1", Events: 2, Error: "event e2: boom"}
	msgs = collect(model.handleServiceEvent(services.SyncCompletedEvent{OrgID: "org1", Run: partial, Error: errors.New("boom")}))
	if add, ok := findMsg[AddNotificationMsg](msgs); !ok || add.Type != NotificationWarning {
		t.Errorf("partial failure should warn, got %v", msgs)
	}

	snap := &analytics.Snapshot{OrgID: "org1", Range: models.DateRangeAllTime.Key()}
	model.handleServiceEvent(services.AnalyticsUpdatedEvent{Snapshot: snap})
	if model.state.GetSnapshot() != snap {
		t.Error("AnalyticsUpdatedEvent should store the snapshot")
	}

	other := &analytics.Snapshot{OrgID: "org1", Range: models.DateRangeLast30Days.Key()}
	model.handleServiceEvent(services.AnalyticsUpdatedEvent{Snapshot: other})
	if model.state.GetSnapshot() != snap {
		t.Error("snapshot for another range should be ignored")
	}

	model.handleServiceEvent(services.StatsEvent{StoreStats: models.StoreStats{Events: 7}})
	if model.state.GetStats().Events != 7 {
		t.Error("StatsEvent should update stats")
	}

	msgs = collect(model.handleServiceEvent(services.ErrorEvent{Service: "ticketing", Error: errors.New("down")}))
	if add, ok := findMsg[AddNotificationMsg](msgs); !ok || !strings.Contains(add.Message, "[ticketing] down") {
		t.Errorf("ErrorEvent should raise a toast, got %v", msgs)
	}
}

func TestModel_OrganizationsChanged(t *testing.T) {
	model := NewModel(nil)
	orgs := []models.Organization{{ID: "org1"}, {ID: "org2"}}

	model.handleServiceEvent(services.OrganizationsChangedEvent{Organizations: orgs, Active: &orgs[1]})
	if model.state.ActiveID() != "org2" {
		t.Errorf("ActiveID = %q, want org2", model.state.ActiveID())
	}
	if len(model.state.GetOrganizations()) != 2 {
		t.Error("organizations should be stored")
	}
}

func TestModel_SyncResult(t *testing.T) {
	model := NewModel(nil)
	model.state.SetLoading(ResourceSync, true)

	_, cmd := model.Update(SyncResultMsg{Error: ticketing.ErrSyncInProgress})
	if model.state.IsSyncing() {
		t.Error("syncing flag should be cleared")
	}
	if add, ok := findMsg[AddNotificationMsg](collect(cmd)); !ok || add.Type != NotificationInfo {
		t.Error("in-progress sync should raise an info toast")
	}

	_, cmd = model.Update(SyncResultMsg{Run: &models.SyncRun{}, Error: errors.New("partial")})
	if _, ok := findMsg[AddNotificationMsg](collect(cmd)); ok {
		t.Error("started runs are reported by service events")
	}
}

func TestModel_RefreshWithoutServices(t *testing.T) {
	model := NewModel(nil)
	if cmds := model.handleRefresh(RefreshMsg{Sync: true}); cmds != nil {
		t.Error("refresh without services should do nothing")
	}

	msg := model.handleKeyMsg(keyRune('r'))()
	if refresh, ok := msg.(RefreshMsg); !ok || !refresh.Sync {
		t.Errorf("r should request a sync, got %v", msg)
	}
	msg = model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlR})()
	if refresh, ok := msg.(RefreshMsg); !ok || refresh.Sync {
		t.Errorf("ctrl+r should request a recompute, got %v", msg)
	}
}

func TestModel_Recompute(t *testing.T) {
	mgr := newTestManager(t)
	seedOrganization(t, mgr)
	model := NewModel(mgr)
	model.state.SetOrganizations(mgr.Organizations().GetOrganizations(), mgr.Organizations().GetActive())

	var msgs []tea.Msg
	for _, cmd := range model.handleRefresh(RefreshMsg{}) {
		msgs = append(msgs, collect(cmd)...)
	}
	if _, ok := findMsg[SnapshotLoadedMsg](msgs); !ok {
		t.Errorf("recompute should reload the snapshot, got %v", msgs)
	}
}

func TestModel_Export(t *testing.T) {
	mgr := newTestManager(t)
	seedOrganization(t, mgr)
	model := NewModel(mgr)
	dir := t.TempDir()
	model.SetExportDir(dir)

	active := mgr.Organizations().GetActive()
	model.state.SetOrganizations(mgr.Organizations().GetOrganizations(), active)
	snap, err := mgr.Snapshot("", models.DateRangeAllTime, 0)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	model.state.SetSnapshot(snap)

	_, cmd := model.Update(ExportMsg{Kind: ExportMonthlyTrends})
	result, ok := findMsg[ExportResultMsg](collect(cmd))
	if !ok {
		t.Fatal("export should produce an ExportResultMsg")
	}
	if result.Error != nil {
		t.Fatalf("export failed: %v", result.Error)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	_, cmd = model.Update(result)
	add, ok := findMsg[AddNotificationMsg](collect(cmd))
	if !ok || add.Type != NotificationSuccess {
		t.Errorf("expected success toast, got %+v", add)
	}

	_, cmd = model.Update(ExportResultMsg{Kind: ExportForecast, Error: export.ErrNoData})
	add, _ = findMsg[AddNotificationMsg](collect(cmd))
	if add.Type != NotificationWarning || !strings.Contains(add.Message, "forecast") {
		t.Errorf("ErrNoData should warn, got %+v", add)
	}
}

func TestModel_AddAndRemoveNotification(t *testing.T) {
	model := NewModel(nil)

	_, cmd := model.Update(AddNotificationMsg{Type: NotificationInfo, Message: "hello", Duration: time.Minute})
	if cmd == nil {
		t.Error("timed notification should schedule removal")
	}
	n := model.state.GetNotifications()
	if len(n) != 1 {
		t.Fatalf("notifications = %d, want 1", len(n))
	}

	model.Update(RemoveNotificationMsg{ID: n[0].ID})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("RemoveNotificationMsg should remove the notification")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)
	if !strings.Contains(model.View(), "Loading...") {
		t.Error("view before window size should show loading")
	}

	model.SetTabs([]Tab{&stubTab{}})
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	orgs := []models.Organization{{ID: "org1", Name: "Jazz Club"}}
	model.state.SetOrganizations(orgs, &orgs[0])
	model.state.AddNotification(NotificationSuccess, "Synced", time.Minute)

	view := model.View()
	for _, want := range []string{"Dashboard", "Predictions", "Events", "Info", "stub tab", "Jazz Club", "All time", "[OK] Synced"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	model.activeTab = TabInfo
	if !strings.Contains(model.View(), "not yet implemented") {
		t.Error("missing tab should render a placeholder")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		want string
		id   TabID
	}{
		{"Dashboard", TabDashboard},
		{"Predictions", TabPredictions},
		{"Events", TabEvents},
		{"Info", TabInfo},
		{"Unknown", TabID(9)},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
