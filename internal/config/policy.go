package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/j-veylop/boxoffice-tui/internal/forecast"
)

// Policy is the tunable analytics configuration read from analytics.yaml.
type Policy struct {
	Trends      TrendPolicy       `mapstructure:"trends"`
	Seasons     SeasonPolicy      `mapstructure:"seasons"`
	LowCapacity LowCapacityPolicy `mapstructure:"low_capacity"`
	Timezone    string            `mapstructure:"timezone"`
}

// TrendPolicy configures forecasting.
type TrendPolicy struct {
	AttendeeThreshold float64 `mapstructure:"attendee_threshold"`
	RevenueThreshold  float64 `mapstructure:"revenue_threshold"`
	MinMonths         int     `mapstructure:"min_months"`
	MonthsAhead       int     `mapstructure:"months_ahead"`
	MaxMonthsAhead    int     `mapstructure:"max_months_ahead"`
}

// SeasonPolicy configures seasonality analysis.
type SeasonPolicy struct {
	Hemisphere string `mapstructure:"hemisphere"`
	MinMonths  int    `mapstructure:"min_months"`
}

// LowCapacityPolicy configures low-capacity alerts. Thresholds are percentages.
type LowCapacityPolicy struct {
	AlertBelow        float64 `mapstructure:"alert_below"`
	HighPriorityBelow float64 `mapstructure:"high_priority_below"`
	MaxAlerts         int     `mapstructure:"max_alerts"`
}

// Hemisphere names accepted in the seasons section.
const (
	HemisphereNorth = "north"
	HemisphereSouth = "south"
)

// LoadPolicy reads the policy file at path, falling back to defaults when the
// file does not exist. Any key can be overridden by a BOXOFFICE_ prefixed
// environment variable, e.g. BOXOFFICE_TRENDS_ATTENDEE_THRESHOLD.
func LoadPolicy(path string) (*Policy, error) {
	v := viper.New()
	setPolicyDefaults(v)

	v.SetEnvPrefix("BOXOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read policy file: %w", err)
			}
		}
	}

	var p Policy
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}

	if _, err := p.Engine(); err != nil {
		return nil, err
	}

	return &p, nil
}

func setPolicyDefaults(v *viper.Viper) {
	v.SetDefault("trends.attendee_threshold", forecast.DefaultAttendeeTrendThreshold)
	v.SetDefault("trends.revenue_threshold", forecast.DefaultRevenueTrendThreshold)
	v.SetDefault("trends.min_months", forecast.DefaultMinForecastMonths)
	v.SetDefault("trends.months_ahead", forecast.DefaultMonthsAhead)
	v.SetDefault("trends.max_months_ahead", forecast.DefaultMaxMonthsAhead)
	v.SetDefault("seasons.hemisphere", HemisphereNorth)
	v.SetDefault("seasons.min_months", forecast.DefaultMinSeasonalityMonths)
	v.SetDefault("low_capacity.alert_below", 40.0)
	v.SetDefault("low_capacity.high_priority_below", 20.0)
	v.SetDefault("low_capacity.max_alerts", 5)
	v.SetDefault("timezone", "")
}

// DefaultPolicy returns the policy used when no file is present.
func DefaultPolicy() *Policy {
	v := viper.New()
	setPolicyDefaults(v)
	var p Policy
	_ = v.Unmarshal(&p)
	return &p
}

// Engine converts the policy into a forecast policy and validates it.
func (p *Policy) Engine() (forecast.Policy, error) {
	fp := forecast.Policy{
		AttendeeTrendThreshold: p.Trends.AttendeeThreshold,
		RevenueTrendThreshold:  p.Trends.RevenueThreshold,
		MinForecastMonths:      p.Trends.MinMonths,
		MinSeasonalityMonths:   p.Seasons.MinMonths,
		DefaultMonthsAhead:     p.Trends.MonthsAhead,
		MaxMonthsAhead:         p.Trends.MaxMonthsAhead,
	}

	switch strings.ToLower(p.Seasons.Hemisphere) {
	case HemisphereNorth, "":
		fp.Seasons = forecast.NorthernHemisphereSeasons()
	case HemisphereSouth:
		fp.Seasons = forecast.SouthernHemisphereSeasons()
	default:
		return forecast.Policy{}, fmt.Errorf("unknown hemisphere %q", p.Seasons.Hemisphere)
	}

	if p.Timezone != "" {
		loc, err := time.LoadLocation(p.Timezone)
		if err != nil {
			return forecast.Policy{}, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
		}
		fp.Location = loc
	}

	if err := fp.Validate(); err != nil {
		return forecast.Policy{}, fmt.Errorf("invalid analytics policy: %w", err)
	}
	if p.LowCapacity.HighPriorityBelow > p.LowCapacity.AlertBelow {
		return forecast.Policy{}, fmt.Errorf("invalid analytics policy: high priority threshold %v exceeds alert threshold %v",
			p.LowCapacity.HighPriorityBelow, p.LowCapacity.AlertBelow)
	}

	return fp, nil
}
