// Package analytics assembles dashboard snapshots from the local store and
// the forecast engine.
package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/cache"
	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/forecast"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

const defaultTopCustomers = 10

// Store is the read side of the local database. *db.DB implements it.
type Store interface {
	GetMonthlyTrends(orgID string, r models.DateRange) ([]models.MonthlyAggregate, error)
	GetEventRecords(orgID string, r models.DateRange) ([]models.EventRecord, error)
	GetInsights(orgID string, r models.DateRange) (*models.Insights, error)
	GetEventPerformance(orgID string, r models.DateRange) ([]models.EventPerformance, error)
	GetTopCustomers(orgID string, limit int) ([]models.Customer, error)
	GetWeeklySales(orgID string, r models.DateRange) ([]models.WeeklySales, error)
}

// Snapshot is everything the dashboard shows for one organization and range.
type Snapshot struct {
	GeneratedAt  time.Time                 `json:"generatedAt"`
	Insights     *models.Insights          `json:"insights"`
	OrgID        string                    `json:"orgId"`
	Range        string                    `json:"range"`
	Trends       []models.MonthlyAggregate `json:"trends"`
	BestDays     []forecast.DayStat        `json:"bestDays"`
	Performance  []models.EventPerformance `json:"performance"`
	Alerts       []models.LowCapacityAlert `json:"alerts"`
	WeeklySales  []models.WeeklySales      `json:"weeklySales"`
	TopCustomers []models.Customer         `json:"topCustomers"`
	Seasonality  forecast.Seasonality      `json:"seasonality"`
	Forecast     forecast.Result           `json:"forecast"`
	MonthsAhead  int                       `json:"monthsAhead"`
}

// Service builds and memoizes snapshots.
type Service struct {
	store       Store
	cache       *cache.Cache
	engine      *forecast.Engine
	now         func() time.Time
	lowCapacity config.LowCapacityPolicy
	mu          sync.Mutex
}

// New creates an analytics service. A nil cache disables memoization.
func New(store Store, c *cache.Cache, engine *forecast.Engine, lowCapacity config.LowCapacityPolicy) *Service {
	if engine == nil {
		engine = forecast.NewEngine(forecast.DefaultPolicy())
	}
	return &Service{
		store:       store,
		cache:       c,
		engine:      engine,
		now:         time.Now,
		lowCapacity: lowCapacity,
	}
}

// Engine returns the forecast engine.
func (s *Service) Engine() *forecast.Engine {
	return s.engine
}

func cacheKey(orgID string, r models.DateRange, monthsAhead int) string {
	return cache.Key("analytics", orgID, r.Key(), strconv.Itoa(monthsAhead))
}

// Snapshot returns the snapshot for orgID and r, served from the cache while
// fresh. monthsAhead <= 0 uses the policy default.
func (s *Service) Snapshot(orgID string, r models.DateRange, monthsAhead int) (*Snapshot, error) {
	if monthsAhead <= 0 {
		monthsAhead = s.engine.Policy().DefaultMonthsAhead
	}

	key := cacheKey(orgID, r, monthsAhead)
	if s.cache != nil {
		var snap Snapshot
		if s.cache.GetJSON(key, &snap) {
			return &snap, nil
		}
	}

	// Serialize rebuilds so concurrent callers do not query the store twice.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		var snap Snapshot
		if s.cache.GetJSON(key, &snap) {
			return &snap, nil
		}
	}

	snap, err := s.build(orgID, r, monthsAhead)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(key, snap); err != nil {
			logger.Warn("failed to cache analytics snapshot", "org", orgID, "error", err)
		}
	}
	return snap, nil
}

func (s *Service) build(orgID string, r models.DateRange, monthsAhead int) (*Snapshot, error) {
	started := time.Now()

	trends, err := s.store.GetMonthlyTrends(orgID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly trends: %w", err)
	}
	records, err := s.store.GetEventRecords(orgID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load event records: %w", err)
	}
	insights, err := s.store.GetInsights(orgID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}
	performance, err := s.store.GetEventPerformance(orgID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load event performance: %w", err)
	}
	weekly, err := s.store.GetWeeklySales(orgID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly sales: %w", err)
	}
	customers, err := s.store.GetTopCustomers(orgID, defaultTopCustomers)
	if err != nil {
		return nil, fmt.Errorf("failed to load top customers: %w", err)
	}

	result, err := s.engine.PredictNextMonths(trends, monthsAhead)
	if err != nil {
		return nil, fmt.Errorf("failed to predict attendance: %w", err)
	}

	snap := &Snapshot{
		OrgID:        orgID,
		Range:        r.Key(),
		GeneratedAt:  s.now(),
		MonthsAhead:  monthsAhead,
		Trends:       trends,
		Insights:     insights,
		Forecast:     result,
		BestDays:     s.engine.AnalyzeBestDays(records),
		Seasonality:  s.engine.AnalyzeSeasonality(trends),
		Performance:  performance,
		Alerts:       LowCapacityAlerts(performance, s.now(), s.lowCapacity),
		WeeklySales:  weekly,
		TopCustomers: customers,
	}

	logger.Debug("built analytics snapshot", "org", orgID, "range", r.Key(),
		"months", len(trends), "events", len(performance), "duration", time.Since(started))
	return snap, nil
}

// Invalidate drops every cached snapshot of orgID.
func (s *Service) Invalidate(orgID string) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.Clear(cache.Key("analytics", orgID, ""))
	if err != nil {
		logger.Warn("failed to invalidate analytics cache", "org", orgID, "error", err)
		return
	}
	logger.Debug("invalidated analytics cache", "org", orgID, "entries", n)
}

// LowCapacityAlerts returns on-sale future events whose sell-through is below
// p.AlertBelow, soonest first, at most p.MaxAlerts of them.
func LowCapacityAlerts(events []models.EventPerformance, now time.Time, p config.LowCapacityPolicy) []models.LowCapacityAlert {
	alerts := make([]models.LowCapacityAlert, 0)
	for _, e := range events {
		if e.Status != models.EventStatusLive && e.Status != models.EventStatusStarted {
			continue
		}
		if !e.Start.After(now) || e.Capacity <= 0 || e.SellThrough >= p.AlertBelow {
			continue
		}

		priority := models.AlertPriorityMedium
		if e.SellThrough < p.HighPriorityBelow {
			priority = models.AlertPriorityHigh
		}
		alerts = append(alerts, models.LowCapacityAlert{Priority: priority, EventPerformance: e})
	}

	slices.SortStableFunc(alerts, func(a, b models.LowCapacityAlert) int {
		return a.Start.Compare(b.Start)
	})
	if p.MaxAlerts > 0 && len(alerts) > p.MaxAlerts {
		alerts = alerts[:p.MaxAlerts]
	}
	return alerts
}

// SortPerformance returns a copy of events ranked by key, truncated to limit
// entries. A limit of 0 keeps every event.
func SortPerformance(events []models.EventPerformance, key models.PerformanceSort, limit int) []models.EventPerformance {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.EventPerformance) int {
		switch {
		case key.Less(&a, &b):
			return -1
		case key.Less(&b, &a):
			return 1
		default:
			return cmp.Compare(a.Name, b.Name)
		}
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
