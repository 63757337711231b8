// Package predictions provides the forecasting tab: attendance and revenue
// trends, projected months, best weekdays and seasonal patterns.
package predictions

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
)

// bestDayRows is how many weekdays the ranking shows.
const bestDayRows = 5

var (
	exportKey = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export forecast"))
	seriesKey = key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "attendees/revenue"))
)

// Model is the predictions tab. showRevenue switches the forecast chart
// from attendees to revenue.
type Model struct {
	components.Page
	state       *app.State
	showRevenue bool
}

func New(state *app.State) *Model {
	return &Model{
		Page:  components.NewPage("Building forecast..."),
		state: state,
	}
}

func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, exportKey):
			return m, func() tea.Msg { return app.ExportMsg{Kind: app.ExportForecast} }
		case key.Matches(keyMsg, seriesKey):
			m.showRevenue = !m.showRevenue
			return m, nil
		}
	}
	return m, m.Page.Update(msg)
}

func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{exportKey, seriesKey}
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp(), m.ScrollKeys()}
}
