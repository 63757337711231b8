// Package info provides the info tab: configuration, analytics policy,
// sync status and build information.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
)

// Model is a read-only, scrollable page.
type Model struct {
	components.Page
	state  *app.State
	config *config.Config
	policy *config.Policy
}

// New creates the info tab. cfg may be nil; a nil policy shows the defaults.
func New(state *app.State, cfg *config.Config, policy *config.Policy) *Model {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Model{
		Page:   components.NewPage(""),
		state:  state,
		config: cfg,
		policy: policy,
	}
}

// Init returns nil; the page has nothing to load.
func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	return m, m.Page.Update(msg)
}

func (m *Model) ShortHelp() []key.Binding {
	return m.ScrollKeys()
}

func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ScrollKeys()}
}
