package forecast

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/boxoffice-tui/internal/models"
)

func monthly(start string, attendees ...int) []models.MonthlyAggregate {
	t, err := time.Parse(monthKeyLayout, start)
	if err != nil {
		panic(err)
	}
	out := make([]models.MonthlyAggregate, len(attendees))
	for i, a := range attendees {
		out[i] = models.MonthlyAggregate{
			Month:     t.AddDate(0, i, 0).Format(monthKeyLayout),
			Events:    1,
			Attendees: a,
			Revenue:   float64(a) * 20,
		}
	}
	return out
}

func TestRegress(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Line
	}{
		{"empty", nil, Line{}},
		{"single", []float64{42}, Line{}},
		{"two points", []float64{1, 3}, Line{Slope: 2, Intercept: 1}},
		{"perfect fit", []float64{100, 110, 120, 130, 140}, Line{Slope: 10, Intercept: 100}},
		{"flat", []float64{50, 50, 50, 50}, Line{Slope: 0, Intercept: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Regress(tt.values)
			assert.InDelta(t, tt.want.Slope, got.Slope, 1e-9)
			assert.InDelta(t, tt.want.Intercept, got.Intercept, 1e-9)
		})
	}
}

func TestLineAt(t *testing.T) {
	l := Line{Slope: 10, Intercept: 100}
	assert.Equal(t, 150.0, l.At(5))
}

func TestPredictNextMonths_LinearGrowth(t *testing.T) {
	trends := monthly("2024-08", 100, 110, 120, 130, 140)

	res, err := PredictNextMonths(trends, 3)
	require.NoError(t, err)

	assert.Equal(t, TrendGrowing, res.AttendeeTrend)
	assert.InDelta(t, 10.0, res.AvgGrowthRate, 1e-9)
	require.Len(t, res.Predictions, 3)
	assert.Equal(t, int64(150), res.Predictions[0].Attendees)
	assert.Equal(t, int64(160), res.Predictions[1].Attendees)
	assert.Equal(t, int64(3000), res.Predictions[0].Revenue)
	// revenue slope is 200/month
	assert.Equal(t, TrendGrowing, res.RevenueTrend)
}

func TestPredictNextMonths_Flat(t *testing.T) {
	trends := monthly("2024-01", 50, 50, 50, 50)
	for i := range trends {
		trends[i].Revenue = 1000
	}

	res, err := PredictNextMonths(trends, 4)
	require.NoError(t, err)

	assert.Equal(t, TrendStable, res.AttendeeTrend)
	assert.Equal(t, TrendStable, res.RevenueTrend)
	assert.Zero(t, res.AvgGrowthRate)
	require.Len(t, res.Predictions, 4)
	for _, p := range res.Predictions {
		assert.Equal(t, int64(50), p.Attendees)
		assert.Equal(t, int64(1000), p.Revenue)
	}
}

func TestPredictNextMonths_InsufficientData(t *testing.T) {
	for n := 0; n < 3; n++ {
		for _, ahead := range []int{-1, 0, 1, 12} {
			t.Run(fmt.Sprintf("n=%d ahead=%d", n, ahead), func(t *testing.T) {
				res, err := PredictNextMonths(monthly("2024-01", make([]int, n)...), ahead)
				require.NoError(t, err)
				assert.Empty(t, res.Predictions)
				assert.NotNil(t, res.Predictions)
				assert.Equal(t, TrendInsufficientData, res.AttendeeTrend)
				assert.Equal(t, TrendInsufficientData, res.RevenueTrend)
				assert.Zero(t, res.AvgGrowthRate)
			})
		}
	}
}

func TestPredictNextMonths_DefaultHorizon(t *testing.T) {
	res, err := PredictNextMonths(monthly("2024-01", 1, 2, 3), 0)
	require.NoError(t, err)
	assert.Len(t, res.Predictions, DefaultMonthsAhead)
}

func TestPredictNextMonths_HorizonCappedByPolicy(t *testing.T) {
	trends := monthly("2024-01", 1, 2, 3)

	res, err := PredictNextMonths(trends, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, res.Predictions, DefaultMaxMonthsAhead)
	assert.Equal(t, "2034-03", res.Predictions[DefaultMaxMonthsAhead-1].Month)

	p := DefaultPolicy()
	p.MaxMonthsAhead = 12
	res, err = NewEngine(p).PredictNextMonths(trends, 13)
	require.NoError(t, err)
	assert.Len(t, res.Predictions, 12)

	res, err = NewEngine(p).PredictNextMonths(trends, 12)
	require.NoError(t, err)
	assert.Len(t, res.Predictions, 12)
}

func TestPolicyValidate_MaxMonthsAhead(t *testing.T) {
	p := DefaultPolicy()
	p.MaxMonthsAhead = 0
	assert.NoError(t, p.Validate())

	p.MaxMonthsAhead = -1
	assert.ErrorContains(t, p.Validate(), "max months ahead must be >= 0")

	p.MaxMonthsAhead = 2
	assert.ErrorContains(t, p.Validate(), "exceeds max months ahead")
}

func TestPredictNextMonths_YearRollover(t *testing.T) {
	res, err := PredictNextMonths(monthly("2024-09", 10, 20, 30, 40), 3)
	require.NoError(t, err)

	var keys, labels []string
	for _, p := range res.Predictions {
		keys = append(keys, p.Month)
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, keys)
	assert.Equal(t, []string{"Jan '25", "Feb '25", "Mar '25"}, labels)
}

func TestPredictNextMonths_GapsUseLastObservedMonth(t *testing.T) {
	trends := []models.MonthlyAggregate{
		{Month: "2023-01", Attendees: 10},
		{Month: "2023-06", Attendees: 10},
		{Month: "2023-11", Attendees: 10},
	}
	res, err := PredictNextMonths(trends, 2)
	require.NoError(t, err)
	assert.Equal(t, "2023-12", res.Predictions[0].Month)
	assert.Equal(t, "2024-01", res.Predictions[1].Month)
}

func TestPredictNextMonths_ClampsAtZero(t *testing.T) {
	trends := monthly("2024-01", 300, 200, 100, 10)
	res, err := PredictNextMonths(trends, 6)
	require.NoError(t, err)

	assert.Equal(t, TrendDeclining, res.AttendeeTrend)
	assert.Equal(t, TrendDeclining, res.RevenueTrend)
	assert.Less(t, res.AvgGrowthRate, -5.0)
	for _, p := range res.Predictions {
		assert.GreaterOrEqual(t, p.Attendees, int64(0))
		assert.GreaterOrEqual(t, p.Revenue, int64(0))
	}
	assert.Equal(t, int64(0), res.Predictions[len(res.Predictions)-1].Attendees)
}

func TestPredictNextMonths_ThresholdIsStrict(t *testing.T) {
	// slope exactly 5 is stable; exactly 50 revenue is stable
	trends := []models.MonthlyAggregate{
		{Month: "2024-01", Attendees: 0, Revenue: 0},
		{Month: "2024-02", Attendees: 5, Revenue: 50},
		{Month: "2024-03", Attendees: 10, Revenue: 100},
	}
	res, err := PredictNextMonths(trends, 1)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, res.AttendeeTrend)
	assert.Equal(t, TrendStable, res.RevenueTrend)
}

func TestPredictNextMonths_RoundsHalfAwayFromZero(t *testing.T) {
	trends := []models.MonthlyAggregate{
		{Month: "2024-01", Revenue: 2.5},
		{Month: "2024-02", Revenue: 2.5},
		{Month: "2024-03", Revenue: 2.5},
	}
	res, err := PredictNextMonths(trends, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Predictions[0].Revenue)
}

func TestPredictNextMonths_MalformedLastKey(t *testing.T) {
	for _, key := range []string{"2024-13", "2024-1", "Jan 2024", ""} {
		t.Run(key, func(t *testing.T) {
			trends := monthly("2024-01", 1, 2, 3)
			trends[2].Month = key
			_, err := PredictNextMonths(trends, 3)
			assert.ErrorIs(t, err, ErrMalformedMonthKey)
		})
	}
}

func TestEngine_CustomThresholds(t *testing.T) {
	p := DefaultPolicy()
	p.AttendeeTrendThreshold = 20
	e := NewEngine(p)

	res, err := e.PredictNextMonths(monthly("2024-01", 100, 110, 120, 130, 140), 1)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, res.AttendeeTrend)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Dec '24", MonthLabel("2024-12"))
	assert.Equal(t, "bogus", MonthLabel("bogus"))
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.AttendeeTrendThreshold = -1
	p.MinForecastMonths = 1
	p.Seasons = append(p.Seasons, Season{Name: "Extra", Months: []time.Month{time.January}})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attendee trend threshold")
	assert.Contains(t, err.Error(), "min forecast months")
	assert.Contains(t, err.Error(), "assigned to both")
}

func TestIdempotence(t *testing.T) {
	trends := monthly("2023-01", 12, 40, 33, 90, 71, 65, 10, 8)
	a, errA := PredictNextMonths(trends, 5)
	b, errB := PredictNextMonths(trends, 5)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)

	assert.Equal(t, AnalyzeSeasonality(trends), AnalyzeSeasonality(trends))
}
