package predictions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/forecast"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// View renders the predictions tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.Loading()
	}

	sections := []string{m.renderTitle()}

	cardWidth := m.CardWidth()
	snap := m.state.GetSnapshot()
	switch {
	case m.state.GetActive() == nil:
		sections = append(sections, components.RenderEmptyCard("Forecast",
			"No organization configured", "Add one to organizations.json or wait for discovery", cardWidth))
	case snap == nil:
		sections = append(sections, m.LoadingCard())
	default:
		sections = append(sections,
			m.renderTrends(snap.Forecast, cardWidth),
			m.renderForecast(snap, cardWidth),
			m.renderBestDays(snap.BestDays, cardWidth),
			m.renderSeasonality(snap.Seasonality, cardWidth),
		)
	}

	return m.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Predictions")

	subtitle := "Trends, forecasts and seasonal patterns"
	if org := m.state.GetActive(); org != nil {
		subtitle = fmt.Sprintf("%s · %s", org.DisplayName(), m.state.GetDateRange())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func trendLabel(t forecast.Trend) string {
	switch t {
	case forecast.TrendGrowing:
		return "▲ Growing"
	case forecast.TrendDeclining:
		return "▼ Declining"
	case forecast.TrendStable:
		return "● Stable"
	default:
		return "Insufficient data"
	}
}

func (m *Model) renderTrends(res forecast.Result, width int) string {
	if res.AttendeeTrend == forecast.TrendInsufficientData {
		return components.RenderEmptyCard("Trends",
			"Not enough monthly history to detect a trend", "Sync more events or press t to widen the range", width)
	}

	row := func(label string, t forecast.Trend) string {
		return fmt.Sprintf("  %-12s %s", label, styles.GetTrendStyle(string(t)).Render(trendLabel(t)))
	}

	growthStyle := styles.TrendStableStyle
	switch {
	case res.AvgGrowthRate > 0:
		growthStyle = styles.TrendGrowingStyle
	case res.AvgGrowthRate < 0:
		growthStyle = styles.TrendDecliningStyle
	}

	return components.RenderCard("Trends", width,
		"",
		row("Attendance", res.AttendeeTrend),
		row("Revenue", res.RevenueTrend),
		fmt.Sprintf("  %-12s %s", "Avg growth", growthStyle.Render(components.FormatGrowth(res.AvgGrowthRate))),
	)
}

func (m *Model) renderForecast(snap *analytics.Snapshot, width int) string {
	preds := snap.Forecast.Predictions
	if len(preds) == 0 {
		return ""
	}

	history := make([]float64, len(snap.Trends))
	for i, t := range snap.Trends {
		if m.showRevenue {
			history[i] = t.Revenue
		} else {
			history[i] = float64(t.Attendees)
		}
	}
	projected := make([]float64, len(preds))
	for i, p := range preds {
		if m.showRevenue {
			projected[i] = float64(p.Revenue)
		} else {
			projected[i] = float64(p.Attendees)
		}
	}

	series, color := "Attendees", styles.Attendance
	if m.showRevenue {
		series, color = "Revenue", styles.Revenue
	}

	rows := []string{
		"",
		components.RenderForecastChart(history, projected, width-16, 8,
			fmt.Sprintf("%s, next %d months", series, len(preds))),
		"",
		components.RenderLegend([]components.LegendItem{
			{Label: "History", Color: color},
			{Label: "Forecast", Color: styles.Forecast},
		}),
		"",
		styles.TableHeaderStyle.Render(fmt.Sprintf("  %-16s %12s %14s", "Month", "Attendees", "Revenue")),
	}
	for _, p := range preds {
		rows = append(rows, styles.TableCellStyle.Render(fmt.Sprintf("  %-16s %12s %14s",
			p.Label, components.FormatCount(int(p.Attendees)), components.FormatMoney(float64(p.Revenue)))))
	}

	return components.RenderCard("Forecast", width, rows...)
}

func (m *Model) renderBestDays(days []forecast.DayStat, width int) string {
	var ranked []forecast.DayStat
	for _, d := range days {
		if d.Count > 0 {
			ranked = append(ranked, d)
		}
	}
	if len(ranked) == 0 {
		return components.RenderEmptyCard("Best Days", "No events with attendance yet", "", width)
	}

	byWeekday := make([]float64, 7)
	for _, d := range days {
		byWeekday[d.Weekday] = d.AvgAttendees
	}

	ranked = ranked[:min(len(ranked), bestDayRows)]
	values := make([]float64, len(ranked))
	labels := make([]string, len(ranked))
	for i, d := range ranked {
		values[i] = d.AvgAttendees
		labels[i] = fmt.Sprintf("%s (%d)", d.Name, d.Count)
	}

	return components.RenderCard("Best Days", width,
		styles.HelpStyle.Render("Average attendees per event, sample size in brackets"),
		"",
		components.RenderBarChart(values, labels, width-8),
		"",
		components.RenderWeekdayPattern(byWeekday),
	)
}

func (m *Model) renderSeasonality(s forecast.Seasonality, width int) string {
	if s.Pattern != forecast.PatternAnalyzed || len(s.Insights) == 0 {
		return components.RenderEmptyCard("Seasonality",
			"Not enough months to compare seasons", "", width)
	}

	peak := s.MaxAvgAttendees()
	values := make([]float64, len(s.Insights))
	labels := make([]string, len(s.Insights))
	lines := make([]string, 0, len(s.Insights))
	for i, in := range s.Insights {
		values[i] = in.AvgAttendees
		labels[i] = in.Season

		share := 0.0
		if peak > 0 {
			share = in.AvgAttendees / peak * 100
		}
		lines = append(lines, fmt.Sprintf("  %-8s %3d months  avg revenue %s  %s of peak",
			in.Season, in.Count, components.FormatMoney(in.AvgRevenue), components.FormatPercent(share)))
	}

	return components.RenderCard("Seasonality", width,
		"",
		components.RenderBarChart(values, labels, width-8),
		"",
		styles.HelpStyle.Render(strings.Join(lines, "\n")),
	)
}
