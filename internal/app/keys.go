package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the bindings handled by the root model before a tab sees a key.
type KeyMap struct {
	Tabs         []key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Sync         key.Binding
	Recompute    key.Binding
	DateRange    key.Binding
	Organization key.Binding
	Help         key.Binding
	Close        key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tabs: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "predictions")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "events")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info")),
		},
		NextTab:      key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "previous tab")),
		Sync:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync from ticketing API")),
		Recompute:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "recompute analytics")),
		DateRange:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle date range")),
		Organization: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "switch organization")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Close:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Sync, k.DateRange, k.Quit}
}

// FullHelp groups the bindings shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	nav := append([]key.Binding{}, k.Tabs...)
	nav = append(nav, k.NextTab, k.PrevTab)
	return [][]key.Binding{
		nav,
		{k.Sync, k.Recompute, k.DateRange, k.Organization, k.Help, k.Quit},
	}
}

// tabFor returns the tab selected by a digit key.
func (k KeyMap) tabFor(msg tea.KeyMsg) (TabID, bool) {
	for i, b := range k.Tabs {
		if key.Matches(msg, b) {
			return TabID(i), true
		}
	}
	return 0, false
}
