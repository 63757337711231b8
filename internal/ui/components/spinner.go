package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

var spinnerLabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary)

// LoadingSpinner is a dot spinner with an optional caption. It is a value
// type like the bubbles models; Update returns the advanced copy.
type LoadingSpinner struct {
	spinner.Model
	Label string
}

// NewSpinner creates a spinner captioned with label.
func NewSpinner(label string) LoadingSpinner {
	return LoadingSpinner{
		Model: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		Label: label,
	}
}

// Init starts the spinner.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.Tick
}

// Update advances the spinner on its own tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.Model, cmd = l.Model.Update(msg)
	return l, cmd
}

// ViewWithLabel renders the spinner followed by its caption.
func (l LoadingSpinner) ViewWithLabel() string {
	if l.Label == "" {
		return l.View()
	}
	return l.View() + " " + spinnerLabelStyle.Render(l.Label)
}

// RenderSpinnerCentered renders s in the middle of a width x height box.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
