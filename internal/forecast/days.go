package forecast

import (
	"slices"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// DayStat aggregates events that started on one weekday.
type DayStat struct {
	Name           string       `json:"name"`
	Weekday        time.Weekday `json:"weekday"`
	Count          int          `json:"count"`
	TotalAttendees int          `json:"totalAttendees"`
	AvgAttendees   float64      `json:"avgAttendees"`
}

// AnalyzeBestDays ranks all seven weekdays by average attendance, best first.
// Records without a start time or attendee count are ignored. The weekday is
// taken from the start's wall-clock date, never re-zoned. Ties keep
// Sunday-first order. Averages are raw: a weekday with a single large event
// outranks one with many moderate events.
func (e *Engine) AnalyzeBestDays(records []models.EventRecord) []DayStat {
	loc := e.policy.location()

	stats := make([]DayStat, 7)
	for d := range stats {
		stats[d] = DayStat{Weekday: time.Weekday(d), Name: time.Weekday(d).String()}
	}

	for _, r := range records {
		if r.Start.IsZero() || r.Attendees == nil {
			continue
		}
		d := wallWeekday(r.Start, loc)
		stats[d].Count++
		stats[d].TotalAttendees += *r.Attendees
	}

	for d := range stats {
		if stats[d].Count > 0 {
			stats[d].AvgAttendees = float64(stats[d].TotalAttendees) / float64(stats[d].Count)
		}
	}

	slices.SortStableFunc(stats, func(a, b DayStat) int {
		switch {
		case a.AvgAttendees > b.AvgAttendees:
			return -1
		case a.AvgAttendees < b.AvgAttendees:
			return 1
		default:
			return 0
		}
	})

	return stats
}

// wallWeekday returns the weekday of t's calendar date as read in loc. The
// date comes from t's own wall clock, so a naive start keeps its weekday
// whatever zone it was labelled with.
func wallWeekday(t time.Time, loc *time.Location) time.Weekday {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Weekday()
}
