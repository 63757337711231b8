package forecast

import (
	"errors"
	"fmt"
	"time"
)

// Season names a fixed group of calendar months.
type Season struct {
	Name   string
	Months []time.Month
}

// NorthernHemisphereSeasons returns the meteorological seasons with December
// through February as Winter.
func NorthernHemisphereSeasons() []Season {
	return []Season{
		{Name: "Winter", Months: []time.Month{time.December, time.January, time.February}},
		{Name: "Spring", Months: []time.Month{time.March, time.April, time.May}},
		{Name: "Summer", Months: []time.Month{time.June, time.July, time.August}},
		{Name: "Fall", Months: []time.Month{time.September, time.October, time.November}},
	}
}

// SouthernHemisphereSeasons returns the meteorological seasons with December
// through February as Summer.
func SouthernHemisphereSeasons() []Season {
	return []Season{
		{Name: "Summer", Months: []time.Month{time.December, time.January, time.February}},
		{Name: "Fall", Months: []time.Month{time.March, time.April, time.May}},
		{Name: "Winter", Months: []time.Month{time.June, time.July, time.August}},
		{Name: "Spring", Months: []time.Month{time.September, time.October, time.November}},
	}
}

// Policy holds the tunable constants of the analytics engine.
type Policy struct {
	// Location is the organizer's zone. Event starts are wall-clock times in
	// this zone and keep their calendar date. Nil means time.Local.
	Location *time.Location
	Seasons  []Season

	// Slopes strictly beyond ±threshold (units per month) are classified as
	// growing or declining.
	AttendeeTrendThreshold float64
	RevenueTrendThreshold  float64

	MinForecastMonths    int
	MinSeasonalityMonths int
	DefaultMonthsAhead   int
	// MaxMonthsAhead caps the forecast horizon. Zero means
	// DefaultMaxMonthsAhead.
	MaxMonthsAhead int
}

// Default policy values.
const (
	DefaultAttendeeTrendThreshold = 5
	DefaultRevenueTrendThreshold  = 50
	DefaultMinForecastMonths      = 3
	DefaultMinSeasonalityMonths   = 4
	DefaultMonthsAhead            = 3
	DefaultMaxMonthsAhead         = 120
)

// DefaultPolicy returns the stock thresholds with Northern Hemisphere seasons.
func DefaultPolicy() Policy {
	return Policy{
		Seasons:                NorthernHemisphereSeasons(),
		AttendeeTrendThreshold: DefaultAttendeeTrendThreshold,
		RevenueTrendThreshold:  DefaultRevenueTrendThreshold,
		MinForecastMonths:      DefaultMinForecastMonths,
		MinSeasonalityMonths:   DefaultMinSeasonalityMonths,
		DefaultMonthsAhead:     DefaultMonthsAhead,
		MaxMonthsAhead:         DefaultMaxMonthsAhead,
	}
}

// Validate reports policy values the engine cannot work with.
func (p Policy) Validate() error {
	var errs []error
	if p.AttendeeTrendThreshold < 0 {
		errs = append(errs, fmt.Errorf("attendee trend threshold must be >= 0, got %v", p.AttendeeTrendThreshold))
	}
	if p.RevenueTrendThreshold < 0 {
		errs = append(errs, fmt.Errorf("revenue trend threshold must be >= 0, got %v", p.RevenueTrendThreshold))
	}
	if p.MinForecastMonths < 2 {
		errs = append(errs, fmt.Errorf("min forecast months must be >= 2, got %d", p.MinForecastMonths))
	}
	if p.MinSeasonalityMonths < 1 {
		errs = append(errs, fmt.Errorf("min seasonality months must be >= 1, got %d", p.MinSeasonalityMonths))
	}
	if p.DefaultMonthsAhead < 1 {
		errs = append(errs, fmt.Errorf("default months ahead must be >= 1, got %d", p.DefaultMonthsAhead))
	}
	if p.MaxMonthsAhead < 0 {
		errs = append(errs, fmt.Errorf("max months ahead must be >= 0, got %d", p.MaxMonthsAhead))
	} else if p.DefaultMonthsAhead > p.maxMonthsAhead() {
		errs = append(errs, fmt.Errorf("default months ahead %d exceeds max months ahead %d",
			p.DefaultMonthsAhead, p.maxMonthsAhead()))
	}

	seen := make(map[time.Month]string)
	for _, s := range p.Seasons {
		for _, m := range s.Months {
			if m < time.January || m > time.December {
				errs = append(errs, fmt.Errorf("season %s: invalid month %d", s.Name, m))
				continue
			}
			if prev, ok := seen[m]; ok {
				errs = append(errs, fmt.Errorf("month %s assigned to both %s and %s", m, prev, s.Name))
				continue
			}
			seen[m] = s.Name
		}
	}

	return errors.Join(errs...)
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p Policy) maxMonthsAhead() int {
	if p.MaxMonthsAhead <= 0 {
		return DefaultMaxMonthsAhead
	}
	return p.MaxMonthsAhead
}
