package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.Loading()
	}

	sections := []string{m.renderTitle()}

	cardWidth := m.CardWidth()
	snap := m.state.GetSnapshot()
	switch {
	case m.state.GetActive() == nil:
		sections = append(sections, components.RenderEmptyCard("Overview",
			"No organization configured", "Add one to organizations.json or wait for discovery", cardWidth))
	case snap == nil:
		sections = append(sections, m.LoadingCard())
	case snap.Insights == nil || snap.Insights.TotalEvents == 0:
		sections = append(sections, components.RenderEmptyCard("Overview",
			"No events in this date range", "Press t to widen the range or r to sync", cardWidth))
	default:
		sections = append(sections,
			m.renderKPIs(snap.Insights),
			m.renderAttendanceChart(snap, cardWidth),
			m.renderTicketTypes(snap.Insights, cardWidth),
			m.renderTopCustomers(snap.TopCustomers, cardWidth),
		)
	}

	return m.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Box Office Dashboard")

	subtitle := "Ticket sales and attendance overview"
	if org := m.state.GetActive(); org != nil {
		subtitle = fmt.Sprintf("%s · %s", org.DisplayName(), m.state.GetDateRange())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderKPIs(in *models.Insights) string {
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		components.RenderKPI("Events", components.FormatCount(in.TotalEvents)),
		components.RenderKPI("Attendees", components.FormatCount(in.TotalAttendees)),
		components.RenderKPI("Avg / event", fmt.Sprintf("%.1f", in.AvgAttendeesPerEvent)),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		components.RenderKPI("Revenue", components.FormatMoney(in.TotalRevenue)),
		components.RenderKPI("Customers", components.FormatCount(in.UniqueCustomers)),
		components.RenderKPI("Repeat rate", components.FormatPercent(in.RepeatCustomerRate)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, "")
}

func (m *Model) renderAttendanceChart(snap *analytics.Snapshot, width int) string {
	if len(snap.Trends) == 0 {
		return components.RenderEmptyCard("Monthly Attendance", "No completed months yet", "", width)
	}

	data := make([]float64, len(snap.Trends))
	for i, t := range snap.Trends {
		data[i] = float64(t.Attendees)
	}

	first, last := snap.Trends[0].Month, snap.Trends[len(snap.Trends)-1].Month
	caption := fmt.Sprintf("%s to %s", first, last)
	return components.RenderCard("Monthly Attendance", width,
		"",
		components.RenderLineChart(data, width-16, 8, caption),
	)
}

func (m *Model) renderTicketTypes(in *models.Insights, width int) string {
	if len(in.TicketTypes) == 0 {
		return ""
	}

	values := make([]float64, len(in.TicketTypes))
	labels := make([]string, len(in.TicketTypes))
	for i, tt := range in.TicketTypes {
		values[i] = float64(tt.Count)
		labels[i] = components.Truncate(tt.Name, 20)
	}

	return components.RenderCard("Ticket Types", width, "", components.RenderBarChart(values, labels, width-8))
}

func (m *Model) renderTopCustomers(customers []models.Customer, width int) string {
	if len(customers) == 0 {
		return components.RenderEmptyCard("Top Customers", "No customers yet", "", width)
	}

	emailWidth := max(width-40, 20)
	header := styles.TableHeaderStyle.Render(fmt.Sprintf("%-4s %-*s %8s %14s", "#", emailWidth, "Email", "Events", "Lifetime"))
	rows := []string{"", header}

	for i, c := range customers[:min(len(customers), topCustomerRows)] {
		rows = append(rows, styles.TableCellStyle.Render(fmt.Sprintf("%-4d %-*s %8d %14s",
			i+1, emailWidth, components.Truncate(c.Email, emailWidth), c.EventsAttended, components.FormatMoney(c.LifetimeValue))))
	}

	return components.RenderCard("Top Customers", width, rows...)
}
