package components

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestSpinner(t *testing.T) {
	s := NewSpinner("Syncing")

	if s.Init() == nil {
		t.Error("Init should return the tick command")
	}
	if !strings.Contains(s.ViewWithLabel(), "Syncing") {
		t.Error("ViewWithLabel should include the label")
	}

	s.Label = ""
	if s.ViewWithLabel() != s.View() {
		t.Error("ViewWithLabel without label should match View")
	}

	next, cmd := s.Update(s.Tick())
	if cmd == nil {
		t.Error("a tick should schedule the next frame")
	}
	if next.View() == "" {
		t.Error("View returned empty")
	}
}

func TestPage(t *testing.T) {
	p := NewPage("Loading analytics...")
	p.SetSize(80, 6)

	if p.Init() == nil {
		t.Error("Init should start the spinner")
	}
	if p.Width() != 80 || p.Height() != 6 || p.CardWidth() != 74 {
		t.Errorf("size = %dx%d card %d", p.Width(), p.Height(), p.CardWidth())
	}
	if !strings.Contains(p.Loading(), "Loading analytics...") {
		t.Error("Loading should show the label")
	}

	for _, k := range []string{"h", "l", " ", "f", "b"} {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if key.Matches(msg, p.viewport.KeyMap.Left, p.viewport.KeyMap.Right, p.viewport.KeyMap.PageUp, p.viewport.KeyMap.PageDown) {
			t.Errorf("%q should not scroll the page", k)
		}
	}

	lines := make([]string, 30)
	for i := range lines {
		lines[i] = fmt.Sprintf("row %02d", i)
	}
	p.Render(strings.Join(lines, "\n"))
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if p.viewport.YOffset != 1 {
		t.Errorf("YOffset after j = %d, want 1", p.viewport.YOffset)
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if !strings.Contains(view, "Loading...") {
		t.Error("RenderSpinnerCentered should include the label")
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Attendees"); !strings.Contains(s, "Attendees") {
		t.Error("RenderLineChart should include the caption")
	}
	if s := RenderLineChart(nil, 20, 5, ""); !strings.Contains(s, "No data") {
		t.Errorf("RenderLineChart(nil) = %q", s)
	}
}

func TestRenderForecastChart(t *testing.T) {
	s := RenderForecastChart([]float64{10, 20, 30}, []float64{35, 40}, 30, 5, "Forecast")
	if !strings.Contains(s, "Forecast") {
		t.Error("RenderForecastChart should include the caption")
	}

	if s := RenderForecastChart(nil, nil, 30, 5, ""); !strings.Contains(s, "No data") {
		t.Errorf("RenderForecastChart(nil, nil) = %q", s)
	}

	if s := RenderForecastChart([]float64{1, 2}, nil, 30, 5, "History"); !strings.Contains(s, "History") {
		t.Error("history-only chart should still render")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{10, 20}, []string{"Winter", "Summer"}, 40)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if strings.Count(lines[1], "█") <= strings.Count(lines[0], "█") {
		t.Error("larger value should have a longer bar")
	}

	if RenderBarChart(nil, nil, 40) != "" {
		t.Error("empty bar chart should render nothing")
	}
}

func TestRenderBarChart_AllZero(t *testing.T) {
	s := RenderBarChart([]float64{0, 0}, []string{"A", "B"}, 40)
	if strings.Contains(s, "█") {
		t.Error("zero values should have empty bars")
	}
	if strings.Contains(s, "NaN") {
		t.Error("zero values should not produce NaN")
	}
}

func TestRenderWeekdayPattern(t *testing.T) {
	s := RenderWeekdayPattern([]float64{0, 0, 0, 0, 0, 10})
	if !strings.HasPrefix(s, "Sun ▁") {
		t.Errorf("pattern = %q, want Sunday first", s)
	}
	if !strings.Contains(s, "Fri █") {
		t.Errorf("pattern = %q, want Friday at full height", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	if s := RenderSparkline([]float64{1, 2, 3}, 10); len([]rune(s)) != 3 {
		t.Errorf("sparkline = %q, want 3 runes", s)
	}
	if s := RenderSparkline(make([]float64, 20), 5); s != "▁▁▁▁▁" {
		t.Errorf("sparkline = %q, want flat", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "History", Color: lipgloss.Color("#ffffff")},
		{Label: "Forecast", Color: lipgloss.Color("#000000")},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "History") || !strings.Contains(s, "Forecast") {
		t.Errorf("legend = %q", s)
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{FormatCount(1234567), "1,234,567"},
		{FormatCount(12), "12"},
		{FormatMoney(1234.5), "$1,234.50"},
		{FormatMoney(0), "$0.00"},
		{FormatMoney(-75), "-$75.00"},
		{FormatPercent(42.26), "42.3%"},
		{FormatGrowth(12.34), "+12.3%"},
		{FormatGrowth(-3), "-3.0%"},
		{Truncate("Friday Night Jazz", 10), "Friday ..."},
		{Truncate("Jam", 10), "Jam"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}

	if FormatSince(time.Time{}) != "never" {
		t.Error("zero time should render as never")
	}
	if !strings.Contains(FormatSince(time.Now().Add(-time.Hour)), "ago") {
		t.Error("past time should render relative to now")
	}
}

func TestRenderCards(t *testing.T) {
	if CardWidth(10) != 40 {
		t.Errorf("CardWidth(10) = %d, want 40", CardWidth(10))
	}
	if CardWidth(100) != 94 {
		t.Errorf("CardWidth(100) = %d, want 94", CardWidth(100))
	}

	card := RenderEmptyCard("Events", "Nothing synced yet", "press r to sync", 50)
	for _, want := range []string{"Events", "Nothing synced yet", "press r to sync"} {
		if !strings.Contains(card, want) {
			t.Errorf("empty card missing %q", want)
		}
	}

	kpi := RenderKPI("Attendees", "1,024")
	if !strings.Contains(kpi, "Attendees") || !strings.Contains(kpi, "1,024") {
		t.Errorf("kpi = %q", kpi)
	}
}
