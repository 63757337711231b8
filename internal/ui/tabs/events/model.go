// Package events provides the events tab: ranked event performance,
// low-capacity alerts and weekly ticket sales.
package events

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the events tab.
type keyMap struct {
	Sort            key.Binding
	Limit           key.Binding
	ExportTable     key.Binding
	ExportWeekly    key.Binding
	ExportAttendees key.Binding
	ExportAllEvents key.Binding
	Up              key.Binding
	Down            key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Limit: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "rows shown"),
		),
		ExportTable: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export table"),
		),
		ExportWeekly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "export weekly report"),
		),
		ExportAttendees: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "export attendees"),
		),
		ExportAllEvents: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export all events"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select next"),
		),
	}
}

// Model represents the events tab state.
type Model struct {
	state    *app.State
	source   *analytics.Snapshot
	spinner  components.LoadingSpinner
	keys     keyMap
	rows     []models.EventPerformance
	table    table.Model
	sortKey  models.PerformanceSort
	limitIdx int
	width    int
	height   int
}

// New creates a new events model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading events..."),
		keys:    defaultKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the events tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.syncRows(false)
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Sort):
		m.sortKey = m.sortKey.Next()
		m.syncRows(true)

	case key.Matches(msg, m.keys.Limit):
		m.limitIdx = (m.limitIdx + 1) % len(models.PerformanceLimits)
		m.syncRows(true)

	case key.Matches(msg, m.keys.ExportTable):
		return exportCmd(app.ExportMsg{Kind: app.ExportPerformance})

	case key.Matches(msg, m.keys.ExportWeekly):
		return exportCmd(app.ExportMsg{Kind: app.ExportWeeklySales})

	case key.Matches(msg, m.keys.ExportAllEvents):
		return exportCmd(app.ExportMsg{Kind: app.ExportEvents})

	case key.Matches(msg, m.keys.ExportAttendees):
		if ev := m.SelectedEvent(); ev != nil {
			return exportCmd(app.ExportMsg{Kind: app.ExportAttendees, EventID: ev.EventID})
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func exportCmd(msg app.ExportMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// limit returns the current row cap; 0 means no cap.
func (m *Model) limit() int {
	return models.PerformanceLimits[m.limitIdx]
}

// syncRows rebuilds the table when the snapshot changed or force is set.
func (m *Model) syncRows(force bool) {
	snap := m.state.GetSnapshot()
	if snap == m.source && !force {
		return
	}
	m.source = snap

	m.rows = nil
	if snap != nil {
		m.rows = analytics.SortPerformance(snap.Performance, m.sortKey, m.limit())
	}

	rows := make([]table.Row, 0, len(m.rows))
	for _, ev := range m.rows {
		rows = append(rows, table.Row{
			ev.Name,
			ev.Start.Format("2006-01-02"),
			components.FormatCount(ev.Attendees),
			capacityCell(ev.Capacity),
			components.FormatPercent(ev.SellThrough),
			components.FormatPercent(ev.CheckInRate),
			components.FormatMoney(ev.Revenue),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func capacityCell(c int) string {
	if c <= 0 {
		return "-"
	}
	return components.FormatCount(c)
}

// SelectedEvent returns the highlighted row, or nil when the table is empty.
func (m *Model) SelectedEvent() *models.EventPerformance {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return &m.rows[i]
}

func columnsFor(width int) []table.Column {
	nameWidth := min(max(width-75, 16), 50)
	return []table.Column{
		{Title: "Event", Width: nameWidth},
		{Title: "Date", Width: 10},
		{Title: "Sold", Width: 6},
		{Title: "Cap", Width: 6},
		{Title: "Sell%", Width: 7},
		{Title: "Check-in", Width: 8},
		{Title: "Revenue", Width: 12},
	}
}

// SetSize sets the available size for the events tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columnsFor(width))
	m.table.SetHeight(max(height/2-6, 5))
}

func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Sort, m.keys.Limit, m.keys.ExportTable, m.keys.ExportAttendees}
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Sort, m.keys.Limit},
		{m.keys.ExportTable, m.keys.ExportWeekly},
		{m.keys.ExportAttendees, m.keys.ExportAllEvents},
		{m.keys.Up, m.keys.Down},
	}
}
