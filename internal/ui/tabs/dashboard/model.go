// Package dashboard provides the overview tab: headline numbers, monthly
// attendance and top customers for the active organization.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
)

const topCustomerRows = 5

var (
	exportTrendsKey    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export monthly trends"))
	exportCustomersKey = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "export top customers"))
)

// Model is the dashboard tab.
type Model struct {
	components.Page
	state *app.State
}

func New(state *app.State) *Model {
	return &Model{
		Page:  components.NewPage("Loading analytics..."),
		state: state,
	}
}

// Update turns e and c into export requests and scrolls on anything else.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, exportTrendsKey):
			return m, requestExport(app.ExportMonthlyTrends)
		case key.Matches(keyMsg, exportCustomersKey):
			return m, requestExport(app.ExportCustomers)
		}
	}
	return m, m.Page.Update(msg)
}

func requestExport(kind app.ExportKind) tea.Cmd {
	return func() tea.Msg { return app.ExportMsg{Kind: kind} }
}

func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{exportTrendsKey, exportCustomersKey}
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp(), m.ScrollKeys()}
}
