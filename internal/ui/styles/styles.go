// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. Numbers are ANSI 256 colors.
var (
	Primary   = lipgloss.Color("205")
	Secondary = lipgloss.Color("63")
	Subtle    = lipgloss.Color("240")

	// Chart series.
	Attendance = lipgloss.Color("208")
	Revenue    = lipgloss.Color("42")
	Forecast   = lipgloss.Color("39")

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("39")

	BgDark   = lipgloss.Color("235")
	BgAccent = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bordered(b lipgloss.Border, c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(b).BorderForeground(c)
}

// Layout and text.
var (
	DocStyle       = lipgloss.NewStyle().Margin(1, 2).Padding(0, 1)
	TitleStyle     = fg(Primary).Bold(true).MarginBottom(1)
	CardStyle      = bordered(lipgloss.RoundedBorder(), Subtle).Padding(1, 2).MarginBottom(1)
	CardTitleStyle = fg(Primary).Bold(true).MarginBottom(1)
	ToastStyle     = bordered(lipgloss.RoundedBorder(), Primary).Padding(0, 1).MarginBottom(1)

	HelpStyle      = fg(TextMuted)
	HelpKeyStyle   = fg(Primary).Bold(true)
	HelpDescStyle  = fg(TextSecondary)
	HelpPanelStyle = bordered(lipgloss.DoubleBorder(), Primary).Padding(1, 3).Background(BgDark)

	TableHeaderStyle = fg(Primary).Bold(true)
	TableCellStyle   = fg(TextPrimary)
)

// Headline numbers on the dashboard.
var (
	KPIValueStyle = fg(TextPrimary).Bold(true)
	KPILabelStyle = fg(TextSecondary)
	KPICardStyle  = bordered(lipgloss.RoundedBorder(), Secondary).Padding(0, 2).MarginRight(1)
)

// Status text.
var (
	ErrorTextStyle   = fg(Error)
	SuccessTextStyle = fg(Success)
	WarningTextStyle = fg(Warning)
	InfoTextStyle    = fg(Info)
)

// Trend and alert markers.
var (
	TrendGrowingStyle   = fg(Success).Bold(true)
	TrendDecliningStyle = fg(Error).Bold(true)
	TrendStableStyle    = fg(Info)
	TrendUnknownStyle   = fg(Subtle).Italic(true)

	PriorityHighStyle   = fg(Error).Bold(true)
	PriorityMediumStyle = fg(Warning)
)

// GetTrendStyle returns the style for a trend label.
func GetTrendStyle(trend string) lipgloss.Style {
	switch trend {
	case "growing":
		return TrendGrowingStyle
	case "declining":
		return TrendDecliningStyle
	case "stable":
		return TrendStableStyle
	}
	return TrendUnknownStyle
}

// GetSellThroughStyle colors a sell-through percentage: 75% and up is good,
// under 40% is bad.
func GetSellThroughStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 75:
		return SuccessTextStyle
	case percent >= 40:
		return WarningTextStyle
	}
	return ErrorTextStyle
}

// GetPriorityStyle returns the style for a low-capacity alert priority.
func GetPriorityStyle(priority string) lipgloss.Style {
	if priority == "high" {
		return PriorityHighStyle
	}
	return PriorityMediumStyle
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
