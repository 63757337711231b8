// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/export"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/services/ticketing"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// TabID identifies a tab by its position in the navbar.
type TabID int

const (
	TabDashboard TabID = iota
	TabPredictions
	TabEvents
	TabInfo
)

var tabNames = []string{"Dashboard", "Predictions", "Events", "Info"}

func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// chromeHeight is the number of rows taken by the navbar and its border.
const chromeHeight = 5

// Tab is implemented by every tab. Only the active tab receives messages.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// Model is the root application model.
type Model struct {
	state    *State
	services *services.Manager
	commands *Commands
	events   chan services.ServiceEvent

	tabs      []Tab
	exportDir string
	keymap    KeyMap
	spinner   spinner.Model

	activeTab TabID
	width     int
	height    int
	showHelp  bool
	ready     bool
}

// NewModel initializes a new application model. mgr may be nil in tests.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	if mgr != nil {
		state.SetDateRange(mgr.DateRange())
	}

	return &Model{
		state:     state,
		services:  mgr,
		commands:  NewCommands(mgr),
		tabs:      make([]Tab, len(tabNames)),
		exportDir: export.DefaultDir(),
		keymap:    DefaultKeyMap(),
		spinner:   s,
	}
}

// SetTabs installs the tab models, in navbar order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	m.resizeTabs()
}

// SetExportDir changes where CSV exports are written.
func (m *Model) SetExportDir(dir string) {
	m.exportDir = dir
}

// GetState returns the state shared with the tabs.
func (m *Model) GetState() *State {
	return m.state
}

// Init starts the spinner, the toast sweeper and the initial load.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{m.spinner.Tick, m.commands.DefaultTick()}
	if m.services != nil {
		cmds = append(cmds, m.commands.Subscribe(), m.commands.LoadInitialData())
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update handles root messages, then forwards msg to the active tab.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := m.handle(msg)
	if tab := m.currentTab(); tab != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handle(msg tea.Msg) []tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resizeTabs()
	case tea.KeyMsg:
		return []tea.Cmd{m.handleKeyMsg(msg)}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return []tea.Cmd{cmd}
	case TickMsg:
		m.state.ClearExpiredNotifications()
		return []tea.Cmd{m.commands.DefaultTick()}
	case SubscriptionEventMsg:
		m.events = msg.Channel
		return []tea.Cmd{m.commands.WaitForEvent(m.events)}
	case ServiceEventMsg:
		cmds := []tea.Cmd{m.handleServiceEvent(msg.Event)}
		if m.events != nil {
			cmds = append(cmds, m.commands.WaitForEvent(m.events))
		}
		return cmds
	case InitialDataLoadedMsg:
		return m.handleInitialData(msg)
	case SnapshotLoadedMsg:
		return m.handleSnapshotLoaded(msg)
	case SyncResultMsg:
		return m.handleSyncResult(msg)
	case SwitchOrganizationResultMsg:
		return m.handleSwitchOrganizationResult(msg)
	case ExportMsg:
		return m.handleExport(msg)
	case ExportResultMsg:
		return m.handleExportResult(msg)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			return []tea.Cmd{m.commands.ClearNotification(id, msg.Duration)}
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case RefreshMsg:
		return m.handleRefresh(msg)
	case TabSwitchMsg:
		m.activate(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) currentTab() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

func (m *Model) activate(id TabID) {
	m.activeTab = id
	m.resizeTabs()
}

func (m *Model) resizeTabs() {
	if m.width == 0 && m.height == 0 {
		return
	}
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, max(m.height-chromeHeight, 0))
		}
	}
}

// handleKeyMsg handles the global bindings. Keys it does not claim still
// reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if id, ok := m.keymap.tabFor(msg); ok {
		if int(id) >= len(m.tabs) {
			return nil
		}
		m.activate(id)
		return func() tea.Msg { return TabSwitchMsg{Tab: id} }
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keymap.Close):
		m.showHelp = false
	case key.Matches(msg, m.keymap.NextTab):
		m.step(1)
	case key.Matches(msg, m.keymap.PrevTab):
		m.step(-1)
	case key.Matches(msg, m.keymap.Sync):
		return func() tea.Msg { return RefreshMsg{Sync: true} }
	case key.Matches(msg, m.keymap.Recompute):
		return func() tea.Msg { return RefreshMsg{} }
	case key.Matches(msg, m.keymap.DateRange):
		return m.cycleDateRange()
	case key.Matches(msg, m.keymap.Organization):
		if m.services != nil {
			return m.commands.SwitchOrganization()
		}
	}
	return nil
}

// step moves the active tab by delta, wrapping around. It is a no-op while
// the help overlay is open.
func (m *Model) step(delta int) {
	n := len(m.tabs)
	if m.showHelp || n == 0 {
		return
	}
	m.activate(TabID((int(m.activeTab) + delta + n) % n))
}

func (m *Model) handleInitialData(msg InitialDataLoadedMsg) []tea.Cmd {
	m.state.SetOrganizations(msg.Organizations.Organizations, msg.Organizations.Active)
	m.state.SetStats(msg.Stats)
	m.state.SetLoading(ResourceInitial, false)

	if msg.Organizations.Active == nil {
		m.finishLoading()
		return []tea.Cmd{m.commands.NotifyWarning("No organization configured yet, waiting for discovery")}
	}
	return m.loadSnapshot()
}

func (m *Model) loadSnapshot() []tea.Cmd {
	if m.services == nil {
		m.finishLoading()
		return nil
	}
	m.state.SetLoading(ResourceSnapshot, true)
	return []tea.Cmd{m.commands.LoadSnapshot(m.state.GetDateRange())}
}

// finishLoading drops the loading toast once nothing is in flight.
func (m *Model) finishLoading() {
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleSnapshotLoaded(msg SnapshotLoadedMsg) []tea.Cmd {
	m.state.SetLoading(ResourceSnapshot, false)
	defer m.finishLoading()

	switch {
	case errors.Is(msg.Error, services.ErrNoOrganization):
		return nil
	case msg.Error != nil:
		return []tea.Cmd{m.commands.NotifyError(fmt.Sprintf("Failed to load analytics: %v", msg.Error))}
	case msg.Snapshot != nil && msg.Snapshot.OrgID == m.state.ActiveID():
		m.state.SetSnapshot(msg.Snapshot)
	}
	return nil
}

// handleSyncResult reports failures that happen before a sync starts. Runs
// that started are reported through service events.
func (m *Model) handleSyncResult(msg SyncResultMsg) []tea.Cmd {
	if msg.Error == nil || msg.Run != nil {
		return nil
	}
	m.state.SetLoading(ResourceSync, false)
	m.finishLoading()

	switch {
	case errors.Is(msg.Error, ticketing.ErrSyncInProgress):
		return []tea.Cmd{m.commands.NotifyInfo("Sync already in progress")}
	case errors.Is(msg.Error, services.ErrNoOrganization):
		return []tea.Cmd{m.commands.NotifyWarning("No organization to sync")}
	default:
		return []tea.Cmd{m.commands.NotifyError(fmt.Sprintf("Sync failed: %v", msg.Error))}
	}
}

func (m *Model) handleSwitchOrganizationResult(msg SwitchOrganizationResultMsg) []tea.Cmd {
	switch {
	case msg.Error != nil:
		return []tea.Cmd{m.commands.NotifyError(fmt.Sprintf("Failed to switch organization: %v", msg.Error))}
	case msg.Organization == nil:
		return []tea.Cmd{m.commands.NotifyWarning("No organizations configured")}
	}

	m.state.SetOrganizations(m.state.GetOrganizations(), msg.Organization)
	cmds := []tea.Cmd{m.commands.NotifySuccess("Switched to " + msg.Organization.DisplayName())}
	return append(cmds, m.loadSnapshot()...)
}

func (m *Model) handleExport(msg ExportMsg) []tea.Cmd {
	if slices.Contains(m.state.GetLoadingResources(), ResourceExport) {
		return nil
	}
	m.state.SetLoading(ResourceExport, true)
	return []tea.Cmd{m.commands.Export(m.state.GetSnapshot(), m.state.GetActive(), msg, m.exportDir)}
}

func (m *Model) handleExportResult(msg ExportResultMsg) []tea.Cmd {
	m.state.SetLoading(ResourceExport, false)
	m.finishLoading()

	switch {
	case errors.Is(msg.Error, export.ErrNoData):
		return []tea.Cmd{m.commands.NotifyWarning(fmt.Sprintf("Nothing to export for %s", msg.Kind))}
	case msg.Error != nil:
		return []tea.Cmd{m.commands.NotifyError(fmt.Sprintf("Export failed: %v", msg.Error))}
	}
	return []tea.Cmd{m.commands.NotifySuccess(fmt.Sprintf("Exported %s to %s", msg.Kind, msg.Path))}
}

// handleRefresh recomputes the snapshot from the store, or syncs first when
// msg.Sync is set.
func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	orgID := m.state.ActiveID()
	switch {
	case orgID == "":
		return []tea.Cmd{m.commands.NotifyWarning("No organization selected")}
	case !msg.Sync:
		m.services.Analytics().Invalidate(orgID)
		m.state.SetLoadingNotification("Recomputing...")
		return m.loadSnapshot()
	case m.state.IsSyncing():
		return []tea.Cmd{m.commands.NotifyInfo("Sync already in progress")}
	}

	m.state.SetLoading(ResourceSync, true)
	m.state.SetLoadingNotification("Syncing...")
	return []tea.Cmd{m.commands.Sync(orgID)}
}

func (m *Model) cycleDateRange() tea.Cmd {
	next := m.state.GetDateRange().Next()
	m.state.SetDateRange(next)

	cmds := []tea.Cmd{
		func() tea.Msg { return DateRangeChangedMsg{Range: next} },
		m.commands.NotifyInfo(fmt.Sprintf("Showing %s", next)),
	}
	if m.services != nil {
		m.services.SetDateRange(next)
		if m.state.ActiveID() != "" {
			cmds = append(cmds, m.loadSnapshot()...)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.OrganizationsChangedEvent:
		before := m.state.ActiveID()
		m.state.SetOrganizations(e.Organizations, e.Active)
		if e.Active != nil && e.Active.ID != before {
			return tea.Batch(m.loadSnapshot()...)
		}

	case services.SyncStartedEvent:
		if e.OrgID == m.state.ActiveID() {
			m.state.SetLoading(ResourceSync, true)
			m.state.SetLoadingNotification("Syncing...")
		}

	case services.SyncCompletedEvent:
		return m.handleSyncCompleted(e)

	case services.AnalyticsUpdatedEvent:
		snap := e.Snapshot
		if snap != nil && snap.OrgID == m.state.ActiveID() && snap.Range == m.state.GetDateRange().Key() {
			m.state.SetSnapshot(snap)
		}

	case services.ErrorEvent:
		return m.commands.NotifyError(fmt.Sprintf("[%s] %v", e.Service, e.Error))

	case services.StatsEvent:
		m.state.SetStats(e)
	}
	return nil
}

func (m *Model) handleSyncCompleted(e services.SyncCompletedEvent) tea.Cmd {
	if e.OrgID != m.state.ActiveID() {
		return nil
	}
	m.state.SetLoading(ResourceSync, false)
	m.finishLoading()
	if e.Run != nil {
		m.state.SetLastRun(e.Run)
	}

	switch {
	case e.Error == nil && e.Run != nil:
		return m.commands.NotifySuccess(fmt.Sprintf("Synced %d events, %d attendees", e.Run.Events, e.Run.Attendees))
	case e.Error != nil && e.Run != nil && e.Run.Events > 0:
		return m.commands.NotifyWarning(fmt.Sprintf("Synced %d events with errors", e.Run.Events))
	}
	// Complete failures arrive as an ErrorEvent as well.
	return nil
}
