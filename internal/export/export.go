// Package export writes dashboard tables as CSV files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/forecast"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

const filePrefix = "boxoffice-"

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteTo writes the header unquoted, then every row with all cells quoted.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		writeQuoted(&b, row)
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeQuoted(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

func money2(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// MonthlyTrends exports Month, Events, Attendees and Revenue.
func MonthlyTrends(trends []models.MonthlyAggregate) (*Table, error) {
	if len(trends) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"Month", "Events", "Attendees", "Revenue"}}
	for _, m := range trends {
		t.Rows = append(t.Rows, []string{
			m.Month, strconv.Itoa(m.Events), strconv.Itoa(m.Attendees), money(m.Revenue),
		})
	}
	return t, nil
}

// Customers exports a ranked customer list.
func Customers(customers []models.Customer) (*Table, error) {
	if len(customers) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"Rank", "Email", "Events Attended", "Lifetime Value"}}
	for i, c := range customers {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1), c.Email, strconv.Itoa(c.EventsAttended), money(c.LifetimeValue),
		})
	}
	return t, nil
}

// Events exports event details.
func Events(events []models.Event) (*Table, error) {
	if len(events) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"Name", "Status", "Start", "Capacity", "Is Free", "URL"}}
	for _, e := range events {
		free := "No"
		if e.IsFree {
			free = "Yes"
		}
		start := ""
		if !e.Start.IsZero() {
			start = e.Start.Format("2006-01-02T15:04:05")
		}
		t.Rows = append(t.Rows, []string{
			e.Name, e.Status, start, strconv.Itoa(e.Capacity), free, e.URL,
		})
	}
	return t, nil
}

// Attendees exports the ticket holders of one event.
func Attendees(attendees []models.Attendee) (*Table, error) {
	if len(attendees) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"First Name", "Last Name", "Email", "Ticket Type", "Status", "Created Date"}}
	for _, a := range attendees {
		created := ""
		if !a.Created.IsZero() {
			created = a.Created.Format(time.RFC3339)
		}
		t.Rows = append(t.Rows, []string{
			a.FirstName, a.LastName, a.Email, a.TicketType, a.Status, created,
		})
	}
	return t, nil
}

// Performance exports the event performance table.
func Performance(events []models.EventPerformance) (*Table, error) {
	if len(events) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"Name", "Date", "Status", "Capacity", "Attendees", "Checked In",
		"Revenue", "Sell-through", "Check-in"}}
	for _, e := range events {
		t.Rows = append(t.Rows, []string{
			e.Name, e.Start.Format("2006-01-02"), e.Status, strconv.Itoa(e.Capacity),
			strconv.Itoa(e.Attendees), strconv.Itoa(e.CheckedIn), money2(e.Revenue),
			fmt.Sprintf("%.1f%%", e.SellThrough), fmt.Sprintf("%.1f%%", e.CheckInRate),
		})
	}
	return t, nil
}

// Forecast exports the projected months with the trend classification.
func Forecast(result forecast.Result) (*Table, error) {
	if len(result.Predictions) == 0 {
		return nil, ErrNoData
	}
	t := &Table{Header: []string{"Month", "Predicted Attendees", "Predicted Revenue", "Attendee Trend", "Revenue Trend"}}
	for _, p := range result.Predictions {
		t.Rows = append(t.Rows, []string{
			p.Month, strconv.FormatInt(p.Attendees, 10), "$" + strconv.FormatInt(p.Revenue, 10),
			string(result.AttendeeTrend), string(result.RevenueTrend),
		})
	}
	return t, nil
}

// WriteWeeklyReport writes a titled sales report for one week, with a
// totals row.
func WriteWeeklyReport(w io.Writer, orgName string, week models.WeeklySales) error {
	if len(week.Events) == 0 {
		return ErrNoData
	}

	var b strings.Builder
	writeQuoted(&b, []string{orgName + " - Weekly Sales Report"})
	b.WriteByte('\n')
	writeQuoted(&b, []string{fmt.Sprintf("Week of: %s to %s",
		week.WeekStart.Format("Jan 2, 2006"), week.WeekEnd().Format("Jan 2, 2006"))})
	b.WriteString("\n\n")
	writeQuoted(&b, []string{"Event Name", "Event Date", "Tickets Sold", "Gross Revenue"})
	for _, e := range week.Events {
		b.WriteByte('\n')
		writeQuoted(&b, []string{e.Name, e.Date.Format("Mon, Jan 2"), strconv.Itoa(e.Tickets), money2(e.Revenue)})
	}
	b.WriteString("\n\n")
	writeQuoted(&b, []string{"TOTALS", fmt.Sprintf("%d Events", len(week.Events)),
		strconv.Itoa(week.TotalTickets), money2(week.TotalRevenue)})

	_, err := io.WriteString(w, b.String())
	return err
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]`)

// Slug lowercases s and replaces every character outside [a-z0-9] with '-'.
func Slug(s string) string {
	return nonSlug.ReplaceAllString(strings.ToLower(s), "-")
}

// Filename builds "boxoffice-<kind>[-<slug>].csv".
func Filename(kind string, name ...string) string {
	base := filePrefix + kind
	if len(name) > 0 && name[0] != "" {
		base += "-" + Slug(strings.Join(name, " "))
	}
	return base + ".csv"
}

// WriteFile writes t into dir/name and returns the full path.
func WriteFile(dir, name string, t *Table) (string, error) {
	return writeFile(dir, name, func(w io.Writer) error {
		_, err := t.WriteTo(w)
		return err
	})
}

// WriteWeeklyReportFile writes the weekly report for week into dir.
func WriteWeeklyReportFile(dir, orgName string, week models.WeeklySales) (string, error) {
	name := Filename("weekly-sales", week.WeekStart.Format("2006-01-02"))
	return writeFile(dir, name, func(w io.Writer) error {
		return WriteWeeklyReport(w, orgName, week)
	})
}

func writeFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}

// DefaultDir returns ~/Downloads when it exists, otherwise the working directory.
func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "."
}
