package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// Trend classifies the direction of a regression slope.
type Trend string

const (
	TrendGrowing          Trend = "growing"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// ErrMalformedMonthKey is returned when the last observed month is not YYYY-MM.
var ErrMalformedMonthKey = errors.New("malformed month key")

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan '06"
)

// PredictedMonth is one projected calendar month.
type PredictedMonth struct {
	Month     string `json:"month"`
	Label     string `json:"label"`
	Attendees int64  `json:"attendees"`
	Revenue   int64  `json:"revenue"`
}

// Result is the outcome of PredictNextMonths.
type Result struct {
	AttendeeTrend Trend            `json:"attendeeTrend"`
	RevenueTrend  Trend            `json:"revenueTrend"`
	Predictions   []PredictedMonth `json:"predictions"`
	// AvgGrowthRate is the unrounded attendee slope per month.
	AvgGrowthRate float64 `json:"avgGrowthRate"`
}

// Engine runs the analyses under a fixed Policy.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine using p.
func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// PredictNextMonths projects attendance and revenue for the months following
// the last entry of trends, which must be sorted ascending by month.
// monthsAhead <= 0 selects the policy default; horizons beyond the policy
// maximum are cut to it.
func (e *Engine) PredictNextMonths(trends []models.MonthlyAggregate, monthsAhead int) (Result, error) {
	n := len(trends)
	if n < e.policy.MinForecastMonths {
		return Result{
			Predictions:   []PredictedMonth{},
			AttendeeTrend: TrendInsufficientData,
			RevenueTrend:  TrendInsufficientData,
		}, nil
	}
	if monthsAhead <= 0 {
		monthsAhead = e.policy.DefaultMonthsAhead
	}
	monthsAhead = min(monthsAhead, e.policy.maxMonthsAhead())

	last, err := parseMonthKey(trends[n-1].Month)
	if err != nil {
		return Result{}, err
	}

	attendees := make([]float64, n)
	revenue := make([]float64, n)
	for i, t := range trends {
		attendees[i] = float64(t.Attendees)
		revenue[i] = t.Revenue
	}

	attendeeLine := Regress(attendees)
	revenueLine := Regress(revenue)

	predictions := make([]PredictedMonth, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		idx := float64(n + i - 1)
		month := last.AddDate(0, i, 0)
		predictions = append(predictions, PredictedMonth{
			Month:     month.Format(monthKeyLayout),
			Label:     month.Format(monthLabelLayout),
			Attendees: clampRound(attendeeLine.At(idx)),
			Revenue:   clampRound(revenueLine.At(idx)),
		})
	}

	return Result{
		Predictions:   predictions,
		AttendeeTrend: classify(attendeeLine.Slope, e.policy.AttendeeTrendThreshold),
		RevenueTrend:  classify(revenueLine.Slope, e.policy.RevenueTrendThreshold),
		AvgGrowthRate: attendeeLine.Slope,
	}, nil
}

func classify(slope, threshold float64) Trend {
	switch {
	case slope > threshold:
		return TrendGrowing
	case slope < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// clampRound rounds half away from zero and floors the result at 0.
func clampRound(v float64) int64 {
	r := math.Round(v)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return int64(r)
}

// parseMonthKey parses "YYYY-MM" into the first instant of that month in UTC.
func parseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedMonthKey, key)
	}
	return t, nil
}

// MonthLabel formats a "YYYY-MM" key as a short label such as "Jan '25".
// Malformed keys are returned unchanged.
func MonthLabel(key string) string {
	t, err := parseMonthKey(key)
	if err != nil {
		return key
	}
	return t.Format(monthLabelLayout)
}

var defaultEngine = NewEngine(DefaultPolicy())

// PredictNextMonths runs Engine.PredictNextMonths under DefaultPolicy.
func PredictNextMonths(trends []models.MonthlyAggregate, monthsAhead int) (Result, error) {
	return defaultEngine.PredictNextMonths(trends, monthsAhead)
}

// AnalyzeBestDays runs Engine.AnalyzeBestDays under DefaultPolicy.
func AnalyzeBestDays(records []models.EventRecord) []DayStat {
	return defaultEngine.AnalyzeBestDays(records)
}

// AnalyzeSeasonality runs Engine.AnalyzeSeasonality under DefaultPolicy.
func AnalyzeSeasonality(trends []models.MonthlyAggregate) Seasonality {
	return defaultEngine.AnalyzeSeasonality(trends)
}
