package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/boxoffice-tui/internal/ui/components"
	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
	"github.com/j-veylop/boxoffice-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderPolicyCard(),
		m.renderSyncCard(),
		m.renderAboutCard(),
	}

	return m.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, analytics policy and sync status")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.Width()-6, 50), 90)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(22).
		Foreground(styles.TextMuted)

	return labelStyle.Render(label+":") + " " + lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(value)
}

func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return components.RenderCard("Configuration", m.cardWidth(), "", styles.HelpStyle.Render("Configuration not loaded"))
	}

	c := m.config
	return components.RenderCard("Configuration", m.cardWidth(),
		"",
		renderRow("Database", c.DatabasePath),
		renderRow("Organizations File", c.OrganizationsPath),
		renderRow("Ticketing API", c.TicketingAPIURL),
		renderRow("API Address", c.APIAddr),
		renderRow("Policy File", c.PolicyPath),
		renderRow("Log File", c.LogFile),
		renderRow("Sync Interval", c.SyncInterval.String()),
		renderRow("Cache TTL", c.CacheTTL.String()),
	)
}

func (m *Model) renderPolicyCard() string {
	p := m.policy

	tz := p.Timezone
	if tz == "" {
		tz = "Local"
	}

	return components.RenderCard("Analytics Policy", m.cardWidth(),
		"",
		renderRow("Timezone", tz),
		renderRow("Hemisphere", p.Seasons.Hemisphere),
		renderRow("Attendee Threshold", fmt.Sprintf("%.1f / month", p.Trends.AttendeeThreshold)),
		renderRow("Revenue Threshold", fmt.Sprintf("%.1f / month", p.Trends.RevenueThreshold)),
		renderRow("Forecast History", fmt.Sprintf("%d months minimum", p.Trends.MinMonths)),
		renderRow("Months Ahead", fmt.Sprintf("%d (max %d)", p.Trends.MonthsAhead, p.Trends.MaxMonthsAhead)),
		renderRow("Seasonality History", fmt.Sprintf("%d months minimum", p.Seasons.MinMonths)),
		renderRow("Low Capacity Alert", "below "+components.FormatPercent(p.LowCapacity.AlertBelow)),
		renderRow("High Priority", "below "+components.FormatPercent(p.LowCapacity.HighPriorityBelow)),
	)
}

func (m *Model) renderSyncCard() string {
	rows := []string{""}

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows,
			renderRow("Organizations", components.FormatCount(stats.Organizations)),
			renderRow("Events", components.FormatCount(stats.Events)),
			renderRow("Attendees", components.FormatCount(stats.Attendees)),
			renderRow("Cached Snapshots", components.FormatCount(stats.CacheEntries)),
			renderRow("Last Sync", components.FormatSince(stats.LastSync)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("No store statistics yet"))
	}

	if run := m.state.GetLastRun(); run != nil {
		status := styles.SuccessTextStyle.Render("ok")
		if run.Error != "" {
			status = styles.ErrorTextStyle.Render(run.Error)
		}
		rows = append(rows,
			"",
			renderRow("Last Run", run.StartedAt.Format("2006-01-02 15:04:05")),
			renderRow("Duration", run.Duration().Round(time.Millisecond).String()),
			renderRow("Fetched", fmt.Sprintf("%d events, %d attendees", run.Events, run.Attendees)),
			renderRow("Status", status),
		)
	}

	rows = append(rows, "", renderRow("Analytics Built", components.FormatSince(m.state.GetLastUpdated())))

	if m.state.IsSyncing() {
		rows = append(rows, "", styles.InfoTextStyle.Render("Sync in progress..."))
	}

	return components.RenderCard("Sync Status", m.cardWidth(), rows...)
}

func (m *Model) renderAboutCard() string {
	return components.RenderCard("About Box Office TUI", m.cardWidth(),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Commit", version.GetCommit()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
		fmt.Sprintf("Organizations: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", len(m.state.GetOrganizations())))),
	)
}
