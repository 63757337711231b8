package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

var (
	navBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(styles.Subtle)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Secondary).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2)
	statusStyle      = lipgloss.NewStyle().Foreground(styles.Info)
	contentStyle     = lipgloss.NewStyle().Padding(1, 2)
	helpGroupStyle   = lipgloss.NewStyle().Foreground(styles.Secondary)
)

// toastLook pairs a notification type with its prefix and style.
var toastLook = map[NotificationType]struct {
	prefix string
	style  lipgloss.Style
}{
	NotificationSuccess: {"[OK]", lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1)},
	NotificationError:   {"[ERR]", lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1)},
	NotificationWarning: {"[WARN]", lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1)},
	NotificationInfo:    {"[INFO]", lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1)},
	NotificationLoading: {"", lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1)},
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder
	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(contentStyle.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if tab := m.currentTab(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	view := b.String()

	if m.showHelp {
		help := m.renderHelp()
		x := (m.width - lipgloss.Width(help)) / 2
		y := (m.height - lipgloss.Height(help)) / 2
		view = overlay(view, help, x, y)
	}

	if toasts := m.renderToasts(); toasts != "" {
		view = overlay(view, toasts, m.width-lipgloss.Width(toasts)-2, 2)
	}
	return view
}

// overlay draws top over base with its upper left corner at column x and
// row y. Rows of top past the end of base are dropped.
func overlay(base, top string, x, y int) string {
	x, y = max(x, 0), max(y, 0)
	rows := strings.Split(base, "\n")
	width := lipgloss.Width(top)

	for i, line := range strings.Split(top, "\n") {
		row := y + i
		if row >= len(rows) {
			break
		}
		left := ansi.Truncate(rows[row], x, "")
		if pad := x - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(rows[row], x+width, "")
		rows[row] = left + line + right
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderNavbar() string {
	labels := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			labels = append(labels, activeTabStyle.Render(fmt.Sprintf("[%d] %s", i+1, name)))
			continue
		}
		labels = append(labels, inactiveTabStyle.Render(fmt.Sprintf(" %d  %s", i+1, name)))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, labels...)

	status := m.renderStatus()
	if gap := m.width - lipgloss.Width(bar) - lipgloss.Width(status) - 4; gap > 0 {
		bar += strings.Repeat(" ", gap) + status
	}
	return navBarStyle.Width(m.width).Render(bar)
}

func (m *Model) renderStatus() string {
	org := "no organization"
	if active := m.state.GetActive(); active != nil {
		org = active.DisplayName()
	}
	status := fmt.Sprintf("%s · %s", org, m.state.GetDateRange())
	if m.state.IsSyncing() {
		status = m.spinner.View() + " " + status
	}
	return statusStyle.Render(status)
}

// renderToasts stacks the live notifications, newest last.
func (m *Model) renderToasts() string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return ""
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		look := toastLook[n.Type]
		prefix := look.prefix
		if n.Type == NotificationLoading {
			prefix = m.spinner.View()
		}
		toasts = append(toasts, styles.ToastStyle.Render(look.style.Render(prefix+" "+n.Message)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

func (m *Model) renderHelp() string {
	lines := []string{styles.TitleStyle.Render("Keyboard Shortcuts")}

	groups := m.keymap.FullHelp()
	titles := []string{"Navigation", "Actions"}
	for i, group := range groups {
		lines = append(lines, helpGroupStyle.Render(titles[i]))
		lines = append(lines, helpLines(group)...)
		lines = append(lines, "")
	}

	if tab := m.currentTab(); tab != nil {
		if bindings := tab.ShortHelp(); len(bindings) > 0 {
			lines = append(lines, helpGroupStyle.Render(m.activeTab.String()+" Tab"))
			lines = append(lines, helpLines(bindings)...)
			lines = append(lines, "")
		}
	}

	lines = append(lines, styles.HelpStyle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func helpLines(bindings []key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, fmt.Sprintf("  %s %s",
			styles.HelpKeyStyle.Render(fmt.Sprintf("%-12s", h.Key)),
			styles.HelpDescStyle.Render(h.Desc)))
	}
	return out
}

func (m *Model) renderPlaceholder() string {
	return contentStyle.Render(fmt.Sprintf("Tab %d: %s\n\n%s",
		m.activeTab+1, m.activeTab, styles.HelpStyle.Render("This tab is not yet implemented.")))
}
