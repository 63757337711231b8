package forecast

import (
	"slices"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// Seasonality pattern markers.
const (
	PatternAnalyzed         = "analyzed"
	PatternInsufficientData = "insufficient_data"
)

// SeasonInsight aggregates the months that fall in one season.
type SeasonInsight struct {
	Season         string  `json:"season"`
	Count          int     `json:"count"`
	TotalAttendees int     `json:"totalAttendees"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AvgAttendees   float64 `json:"avgAttendees"`
	AvgRevenue     float64 `json:"avgRevenue"`
}

// Seasonality is the outcome of AnalyzeSeasonality.
type Seasonality struct {
	Pattern  string          `json:"pattern"`
	Insights []SeasonInsight `json:"insights"`
}

// AnalyzeSeasonality buckets months into the policy's seasons by calendar
// month alone and ranks the seasons by average attendance. Rows whose month
// key does not parse are skipped. Averages are not normalized; all-zero
// results are returned as-is.
func (e *Engine) AnalyzeSeasonality(trends []models.MonthlyAggregate) Seasonality {
	if len(trends) < e.policy.MinSeasonalityMonths {
		return Seasonality{Pattern: PatternInsufficientData, Insights: []SeasonInsight{}}
	}

	insights := make([]SeasonInsight, len(e.policy.Seasons))
	// bucket[m] is the insight index for calendar month m, or -1.
	var bucket [13]int
	for m := range bucket {
		bucket[m] = -1
	}
	for i, s := range e.policy.Seasons {
		insights[i].Season = s.Name
		for _, m := range s.Months {
			if m >= 1 && m <= 12 && bucket[m] < 0 {
				bucket[m] = i
			}
		}
	}

	for _, t := range trends {
		month, err := parseMonthKey(t.Month)
		if err != nil {
			continue
		}
		i := bucket[month.Month()]
		if i < 0 {
			continue
		}
		insights[i].Count++
		insights[i].TotalAttendees += t.Attendees
		insights[i].TotalRevenue += t.Revenue
	}

	for i := range insights {
		if c := insights[i].Count; c > 0 {
			insights[i].AvgAttendees = float64(insights[i].TotalAttendees) / float64(c)
			insights[i].AvgRevenue = insights[i].TotalRevenue / float64(c)
		}
	}

	slices.SortStableFunc(insights, func(a, b SeasonInsight) int {
		switch {
		case a.AvgAttendees > b.AvgAttendees:
			return -1
		case a.AvgAttendees < b.AvgAttendees:
			return 1
		default:
			return 0
		}
	})

	return Seasonality{Pattern: PatternAnalyzed, Insights: insights}
}

// MaxAvgAttendees returns the largest season average, or 0 when there is none.
func (s Seasonality) MaxAvgAttendees() float64 {
	var maxVal float64
	for _, in := range s.Insights {
		maxVal = max(maxVal, in.AvgAttendees)
	}
	return maxVal
}
