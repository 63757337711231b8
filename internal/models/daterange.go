package models

import "time"

// DateRange selects which events feed the dashboard.
type DateRange int

const (
	// DateRangeLast30Days covers events from the last 30 days.
	DateRangeLast30Days DateRange = iota
	// DateRangeLast90Days covers events from the last 90 days.
	DateRangeLast90Days
	// DateRangeThisYear covers events since January 1st.
	DateRangeThisYear
	// DateRangeAllTime covers every stored event.
	DateRangeAllTime
)

// String returns the display name for a date range.
func (r DateRange) String() string {
	switch r {
	case DateRangeLast30Days:
		return "Last 30 days"
	case DateRangeLast90Days:
		return "Last 90 days"
	case DateRangeThisYear:
		return "This year"
	case DateRangeAllTime:
		return "All time"
	default:
		return "Unknown"
	}
}

// Key returns the short identifier used in URLs and cache keys.
func (r DateRange) Key() string {
	switch r {
	case DateRangeLast30Days:
		return "30d"
	case DateRangeLast90Days:
		return "90d"
	case DateRangeThisYear:
		return "ytd"
	default:
		return "all"
	}
}

// Next cycles to the next date range.
func (r DateRange) Next() DateRange {
	return (r + 1) % 4
}

// Bounds returns the half-open interval [from, to) covered at now.
// Zero values mean unbounded; only the lower bound is ever set.
func (r DateRange) Bounds(now time.Time) (from, to time.Time) {
	switch r {
	case DateRangeLast30Days:
		return now.AddDate(0, 0, -30), time.Time{}
	case DateRangeLast90Days:
		return now.AddDate(0, 0, -90), time.Time{}
	case DateRangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), time.Time{}
	default:
		return time.Time{}, time.Time{}
	}
}

// ParseDateRange maps a Key back to a DateRange. Unknown keys select all time.
func ParseDateRange(key string) DateRange {
	switch key {
	case "30d":
		return DateRangeLast30Days
	case "90d":
		return DateRangeLast90Days
	case "ytd":
		return DateRangeThisYear
	default:
		return DateRangeAllTime
	}
}
