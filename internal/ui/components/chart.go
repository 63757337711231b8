// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// noData is shown in place of an empty chart.
const noData = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(noData)
	}

	width, height = clampChartSize(width, height)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderForecastChart plots history followed by its projection.
// The projected series starts on the last historical point so both lines join.
func RenderForecastChart(history, projected []float64, width, height int, caption string) string {
	if len(history) == 0 && len(projected) == 0 {
		return styles.HelpStyle.Render(noData)
	}
	if len(projected) == 0 {
		return RenderLineChart(history, width, height, caption)
	}

	width, height = clampChartSize(width, height)

	total := len(history) + len(projected)
	past := make([]float64, total)
	future := make([]float64, total)
	for i := range total {
		past[i] = math.NaN()
		future[i] = math.NaN()
	}
	copy(past, history)
	copy(future[len(history):], projected)
	if len(history) > 0 {
		future[len(history)-1] = history[len(history)-1]
	}

	return asciigraph.PlotMany([][]float64{past, future},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.DarkOrange,
			asciigraph.DodgerBlue,
		),
	)
}

func clampChartSize(width, height int) (int, int) {
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	return width, height
}

// RenderBarChart creates a horizontal bar chart. Bars scale to the largest
// value; an all-zero series renders empty bars.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-12, 10)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := 0
		if maxVal > 0 && v > 0 {
			barLen = int((v / maxVal) * float64(barWidth))
		}

		bar := lipgloss.NewStyle().Foreground(styles.Attendance).Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%*s │%s %.1f", maxLabelLen, label, bar, v))
	}

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderWeekdayPattern renders one spark per weekday, Sunday first.
func RenderWeekdayPattern(values []float64) string {
	dayNames := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	padded := make([]float64, len(dayNames))
	copy(padded, values)

	maxVal := 0.0
	for _, v := range padded {
		maxVal = max(maxVal, v)
	}

	parts := make([]string, 0, len(dayNames))
	for i, v := range padded {
		parts = append(parts, fmt.Sprintf("%s %s", dayNames[i], string(sparkChars[sparkIndex(v, maxVal)])))
	}
	return strings.Join(parts, " ")
}

// RenderSparkline creates a compact inline sparkline, sampling values down to width.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}

	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		result.WriteRune(sparkChars[sparkIndex(values[int(float64(i)*step)], maxVal)])
	}
	return result.String()
}

func sparkIndex(v, maxVal float64) int {
	if maxVal <= 0 || v <= 0 {
		return 0
	}
	idx := int((v / maxVal) * float64(len(sparkChars)-1))
	return min(max(idx, 0), len(sparkChars)-1)
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
