// Package services provides service orchestration for the TUI and API.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/boxoffice-tui/internal/cache"
	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/db"
	"github.com/j-veylop/boxoffice-tui/internal/forecast"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/services/organizations"
	"github.com/j-veylop/boxoffice-tui/internal/services/ticketing"
)

// ErrNoOrganization is returned when no organization is configured.
var ErrNoOrganization = errors.New("no organization found")

type (
	// OrganizationsChangedEvent is emitted when the organization list or the
	// active organization changes.
	OrganizationsChangedEvent struct {
		Active        *models.Organization
		Organizations []models.Organization
	}

	// SyncStartedEvent is emitted when a sync begins.
	SyncStartedEvent struct {
		OrgID string
	}

	// SyncCompletedEvent is emitted when a sync ends. Error is set on failure
	// and may be set alongside Run for partial failures.
	SyncCompletedEvent struct {
		Error error
		Run   *models.SyncRun
		OrgID string
	}

	// AnalyticsUpdatedEvent is emitted when a fresh snapshot is available.
	AnalyticsUpdatedEvent struct {
		Snapshot *analytics.Snapshot
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// StatsEvent is emitted when local store statistics change.
	StatsEvent struct {
		models.StoreStats
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (OrganizationsChangedEvent) isServiceEvent() {}
func (SyncStartedEvent) isServiceEvent()          {}
func (SyncCompletedEvent) isServiceEvent()        {}
func (AnalyticsUpdatedEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()                {}
func (StatsEvent) isServiceEvent()                {}

// notifyFunc sends a desktop notification.
type notifyFunc func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// orgState remembers what the user was last notified about.
type orgState struct {
	alerts map[string]bool
	trend  forecast.Trend
}

// Manager orchestrates services and event routing.
type Manager struct {
	organizations *organizations.Service
	ticketing     *ticketing.Service
	analytics     *analytics.Service
	database      *db.DB
	cache         *cache.Cache
	policy        *config.Policy
	notify        notifyFunc
	eventChan     chan ServiceEvent
	stopChan      chan struct{}
	previous      map[string]*orgState
	subscribers   []chan<- ServiceEvent
	dateRange     models.DateRange
	mu            sync.RWMutex
	notifyMu      sync.Mutex
	stopOnce      sync.Once
}

// NewManager opens the database and wires every service. Network activity
// starts with Start.
func NewManager(cfg *config.Config, policy *config.Policy) (*Manager, error) {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	enginePolicy, err := policy.Engine()
	if err != nil {
		return nil, fmt.Errorf("invalid analytics policy: %w", err)
	}

	m := &Manager{
		policy:    policy,
		notify:    desktopNotify,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		previous:  make(map[string]*orgState),
		dateRange: models.DateRangeAllTime,
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := m.database.FixLegacyTimeFormats(); err != nil {
		logger.Warn("failed to normalize legacy timestamps", "error", err)
	}

	m.cache = cache.New(m.database, cfg.CacheTTL)
	if n, err := m.cache.Purge(); err != nil {
		logger.Warn("failed to purge expired cache entries", "error", err)
	} else if n > 0 {
		logger.Debug("purged expired cache entries", "count", n)
	}

	m.organizations, err = organizations.New(cfg.OrganizationsPath)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	client := ticketing.NewClient(ticketing.ClientConfig{
		BaseURL:   cfg.TicketingAPIURL,
		Token:     cfg.TicketingToken,
		RateLimit: cfg.APIRateLimit,
	}, m.cache)

	syncConfig := ticketing.DefaultConfig()
	syncConfig.PollInterval = cfg.SyncInterval
	m.ticketing = ticketing.New(client, m.database, m.organizations, m.cache, syncConfig)

	m.analytics = analytics.New(m.database, m.cache, forecast.NewEngine(enginePolicy), policy.LowCapacity)

	go m.routeEvents()

	return m, nil
}

// Start discovers organizations when none are configured and begins
// background syncing.
func (m *Manager) Start() {
	go func() {
		if m.organizations.Count() == 0 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := m.DiscoverOrganizations(ctx); err != nil {
				m.broadcast(ErrorEvent{Service: "ticketing", Error: err})
			}
			cancel()
		}
		m.ticketing.Start()
	}()
}

// DiscoverOrganizations imports the organizations visible to the API token.
func (m *Manager) DiscoverOrganizations(ctx context.Context) ([]models.Organization, error) {
	orgs, err := m.ticketing.DiscoverOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover organizations: %w", err)
	}
	for _, org := range orgs {
		if err := m.organizations.Upsert(org); err != nil {
			return nil, err
		}
	}
	logger.Info("discovered organizations", "count", len(orgs))
	return orgs, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.organizations.Events():
			m.handleOrganizationEvent(event)

		case event := <-m.ticketing.Events():
			m.handleSyncEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleOrganizationEvent(event organizations.Event) {
	switch event.Type {
	case organizations.EventError:
		m.broadcast(ErrorEvent{Service: "organizations", Error: event.Error})
	default:
		m.broadcast(OrganizationsChangedEvent{
			Organizations: m.organizations.GetOrganizations(),
			Active:        m.organizations.GetActive(),
		})
	}
}

func (m *Manager) handleSyncEvent(event ticketing.Event) {
	switch event.Type {
	case ticketing.EventSyncStarted:
		m.broadcast(SyncStartedEvent{OrgID: event.OrgID})

	case ticketing.EventSyncError:
		m.broadcast(SyncCompletedEvent{OrgID: event.OrgID, Run: event.Run, Error: event.Error})
		m.broadcast(ErrorEvent{Service: "ticketing", Error: event.Error})

	case ticketing.EventSyncCompleted:
		m.analytics.Invalidate(event.OrgID)
		if event.Run != nil && event.Error == nil {
			if err := m.organizations.MarkSynced(event.OrgID, event.Run.FinishedAt); err != nil {
				logger.Debug("failed to record sync time", "org", event.OrgID, "error", err)
			}
		}
		m.broadcast(SyncCompletedEvent{OrgID: event.OrgID, Run: event.Run, Error: event.Error})

		if _, err := m.Refresh(event.OrgID); err != nil {
			m.broadcast(ErrorEvent{Service: "analytics", Error: err})
		}
		m.broadcastStats()
	}
}

// Refresh rebuilds the snapshot for orgID in the current date range and
// broadcasts it.
func (m *Manager) Refresh(orgID string) (*analytics.Snapshot, error) {
	snap, err := m.analytics.Snapshot(orgID, m.DateRange(), 0)
	if err != nil {
		return nil, err
	}
	m.checkNotifications(snap)
	m.broadcast(AnalyticsUpdatedEvent{Snapshot: snap})
	return snap, nil
}

// Snapshot returns analytics for orgID, or the active organization when
// orgID is empty.
func (m *Manager) Snapshot(orgID string, r models.DateRange, monthsAhead int) (*analytics.Snapshot, error) {
	id, err := m.ResolveOrganization(orgID)
	if err != nil {
		return nil, err
	}
	return m.analytics.Snapshot(id, r, monthsAhead)
}

// ResolveOrganization returns orgID, or the active organization when empty.
func (m *Manager) ResolveOrganization(orgID string) (string, error) {
	if orgID != "" {
		return orgID, nil
	}
	active := m.organizations.GetActive()
	if active == nil {
		return "", ErrNoOrganization
	}
	return active.ID, nil
}

// Sync refreshes orgID (or the active organization) from the API now.
func (m *Manager) Sync(ctx context.Context, orgID string) (*models.SyncRun, error) {
	id, err := m.ResolveOrganization(orgID)
	if err != nil {
		return nil, err
	}
	return m.ticketing.Sync(ctx, id)
}

// SetDateRange changes the range used by Refresh.
func (m *Manager) SetDateRange(r models.DateRange) {
	m.mu.Lock()
	m.dateRange = r
	m.mu.Unlock()
}

// DateRange returns the range used by Refresh.
func (m *Manager) DateRange() models.DateRange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dateRange
}

// checkNotifications fires desktop notifications for newly flagged
// low-capacity events and for an attendee trend turning declining. The first
// snapshot of an organization only sets the baseline.
func (m *Manager) checkNotifications(snap *analytics.Snapshot) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	current := &orgState{
		alerts: make(map[string]bool, len(snap.Alerts)),
		trend:  snap.Forecast.AttendeeTrend,
	}
	for _, a := range snap.Alerts {
		current.alerts[a.EventID] = true
	}

	prev, exists := m.previous[snap.OrgID]
	m.previous[snap.OrgID] = current
	if !exists {
		return
	}

	for _, a := range snap.Alerts {
		if prev.alerts[a.EventID] {
			continue
		}
		title := fmt.Sprintf("Low sales: %s", a.Name)
		body := fmt.Sprintf("%.0f%% of %d tickets sold (%s priority)", a.SellThrough, a.Capacity, a.Priority)
		if err := m.notify(title, body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}

	if current.trend == forecast.TrendDeclining && prev.trend != forecast.TrendDeclining {
		body := fmt.Sprintf("Attendance is falling by %.1f per month", -snap.Forecast.AvgGrowthRate)
		if err := m.notify("Attendance trend declining", body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
}

func (m *Manager) broadcastStats() {
	stats, err := m.GetStats()
	if err != nil {
		logger.Warn("failed to read store stats", "error", err)
		return
	}
	m.broadcast(stats)
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = slices.Delete(m.subscribers, i, i+1)
			close(ch)
			break
		}
	}
}

// GetStats returns local store statistics.
func (m *Manager) GetStats() (StatsEvent, error) {
	stats, err := m.database.GetStats()
	if err != nil {
		return StatsEvent{}, err
	}
	return StatsEvent{StoreStats: *stats}, nil
}

// Organizations returns the organizations service.
func (m *Manager) Organizations() *organizations.Service {
	return m.organizations
}

// Ticketing returns the sync service.
func (m *Manager) Ticketing() *ticketing.Service {
	return m.ticketing
}

// Analytics returns the analytics service.
func (m *Manager) Analytics() *analytics.Service {
	return m.analytics
}

// Policy returns the analytics policy in effect.
func (m *Manager) Policy() *config.Policy {
	return m.policy
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Cache returns the shared cache.
func (m *Manager) Cache() *cache.Cache {
	return m.cache
}

// InitialState returns the organizations and stats for TUI initialization.
func (m *Manager) InitialState() (OrganizationsChangedEvent, StatsEvent) {
	orgs := OrganizationsChangedEvent{
		Organizations: m.organizations.GetOrganizations(),
		Active:        m.organizations.GetActive(),
	}
	stats, err := m.GetStats()
	if err != nil {
		logger.Warn("failed to read store stats", "error", err)
	}
	return orgs, stats
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.stopOnce.Do(func() {
		close(m.stopChan)

		if err := m.ticketing.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.organizations.Close(); err != nil {
			errs = append(errs, err)
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
