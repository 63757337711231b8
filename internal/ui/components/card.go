package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// CardWidth fits a card into the content area, leaving room for margins.
func CardWidth(width int) int {
	return max(width-6, 40)
}

// RenderCard boxes rows under a title.
func RenderCard(title string, width int, rows ...string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	content := append([]string{fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render(title))}, rows...)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}

// RenderEmptyCard renders a card that explains why there is nothing to show.
func RenderEmptyCard(title, message, hint string, width int) string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{"", fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render(message))}
	if hint != "" {
		rows = append(rows, "", styles.InfoTextStyle.Render("  ╰─▶ "+hint))
	}
	return RenderCard(title, width, rows...)
}

// RenderKPI renders one headline number with its caption.
func RenderKPI(label, value string) string {
	return styles.KPICardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.KPIValueStyle.Render(value),
		styles.KPILabelStyle.Render(label),
	))
}
