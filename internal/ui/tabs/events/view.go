package events

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// weeklyRows caps the weekly sales list.
const weeklyRows = 4

// View renders the events tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	m.syncRows(false)

	sections := []string{m.renderTitle()}

	cardWidth := components.CardWidth(m.width)
	snap := m.state.GetSnapshot()
	switch {
	case m.state.GetActive() == nil:
		sections = append(sections, components.RenderEmptyCard("Events",
			"No organization configured", "Add one to organizations.json or wait for discovery", cardWidth))
	case snap == nil:
		sections = append(sections, components.RenderSpinnerCentered(m.spinner, cardWidth, 5))
	default:
		sections = append(sections,
			m.renderTable(cardWidth),
			m.renderAlerts(snap.Alerts, cardWidth),
			m.renderWeeklySales(snap.WeeklySales, cardWidth),
		)
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Event Performance")

	limit := "all"
	if l := m.limit(); l > 0 {
		limit = fmt.Sprintf("top %d", l)
	}
	subtitle := fmt.Sprintf("Sorted by %s · %s", m.sortKey, limit)
	if org := m.state.GetActive(); org != nil {
		subtitle = fmt.Sprintf("%s · %s · %s", org.DisplayName(), m.state.GetDateRange(), subtitle)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderTable(width int) string {
	if len(m.rows) == 0 {
		return components.RenderEmptyCard("Events", "No events in this date range", "Press t to widen the range or r to sync", width)
	}
	return styles.CardStyle.Width(width).Render(m.table.View())
}

func (m *Model) renderAlerts(alerts []models.LowCapacityAlert, width int) string {
	if len(alerts) == 0 {
		return components.RenderCard("Low Capacity", width, "", styles.SuccessTextStyle.Render("  All upcoming events are selling well"))
	}

	rows := []string{""}
	for _, a := range alerts {
		priority := styles.GetPriorityStyle(string(a.Priority)).Render(fmt.Sprintf("%-6s", strings.ToUpper(string(a.Priority))))
		sold := styles.GetSellThroughStyle(a.SellThrough).Render(components.FormatPercent(a.SellThrough) + " sold")
		rows = append(rows, fmt.Sprintf("  %s %-30s %s  %s (%d/%d)",
			priority, components.Truncate(a.Name, 30), a.Start.Format("Jan 02"), sold, a.Attendees, a.Capacity))
	}
	return components.RenderCard("Low Capacity", width, rows...)
}

func (m *Model) renderWeeklySales(weeks []models.WeeklySales, width int) string {
	if len(weeks) == 0 {
		return components.RenderEmptyCard("Weekly Sales", "No events in the last weeks", "", width)
	}

	// weeks are newest first; the sparkline reads left to right in time.
	tickets := make([]float64, len(weeks))
	for i, w := range weeks {
		tickets[len(weeks)-1-i] = float64(w.TotalTickets)
	}

	rows := []string{
		"",
		"  " + lipgloss.NewStyle().Foreground(styles.Attendance).Render(components.RenderSparkline(tickets, width-10)),
		"",
	}
	for _, w := range weeks[:min(len(weeks), weeklyRows)] {
		rows = append(rows, fmt.Sprintf("  %s - %s  %6s tickets  %12s  %d events",
			w.WeekStart.Format("Jan 02"), w.WeekEnd().Format("Jan 02"),
			components.FormatCount(w.TotalTickets), components.FormatMoney(w.TotalRevenue), len(w.Events)))
	}
	return components.RenderCard("Weekly Sales", width, rows...)
}
