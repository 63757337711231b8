package models

import (
	"testing"
	"time"
)

func TestDateRange_String(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		want string
	}{
		{"30Days", DateRangeLast30Days, "Last 30 days"},
		{"90Days", DateRangeLast90Days, "Last 90 days"},
		{"ThisYear", DateRangeThisYear, "This year"},
		{"AllTime", DateRangeAllTime, "All time"},
		{"Unknown", DateRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("DateRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRange_Next(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		want DateRange
	}{
		{"30Days -> 90Days", DateRangeLast30Days, DateRangeLast90Days},
		{"90Days -> ThisYear", DateRangeLast90Days, DateRangeThisYear},
		{"ThisYear -> AllTime", DateRangeThisYear, DateRangeAllTime},
		{"AllTime -> 30Days", DateRangeAllTime, DateRangeLast30Days},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Next(); got != tt.want {
				t.Errorf("DateRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRange_Bounds(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		r        DateRange
		wantFrom time.Time
	}{
		{"30Days", DateRangeLast30Days, time.Date(2025, time.May, 16, 12, 0, 0, 0, time.UTC)},
		{"90Days", DateRangeLast90Days, time.Date(2025, time.March, 17, 12, 0, 0, 0, time.UTC)},
		{"ThisYear", DateRangeThisYear, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"AllTime", DateRangeAllTime, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.r.Bounds(now)
			if !from.Equal(tt.wantFrom) {
				t.Errorf("Bounds() from = %v, want %v", from, tt.wantFrom)
			}
			if !to.IsZero() {
				t.Errorf("Bounds() to = %v, want zero", to)
			}
		})
	}
}

func TestParseDateRange_RoundTripsKey(t *testing.T) {
	for _, r := range []DateRange{DateRangeLast30Days, DateRangeLast90Days, DateRangeThisYear, DateRangeAllTime} {
		if got := ParseDateRange(r.Key()); got != r {
			t.Errorf("ParseDateRange(%q) = %v, want %v", r.Key(), got, r)
		}
	}
	if got := ParseDateRange("bogus"); got != DateRangeAllTime {
		t.Errorf("ParseDateRange(bogus) = %v, want AllTime", got)
	}
}
