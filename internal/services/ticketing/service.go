package ticketing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/boxoffice-tui/internal/cache"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// ErrSyncInProgress is returned when a sync for the organization is already running.
var ErrSyncInProgress = errors.New("sync already in progress")

// API is the subset of Client used by the Service.
type API interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListEvents(ctx context.Context, orgID string) ([]models.Event, error)
	ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
}

// Store persists synced data. *db.DB implements it.
type Store interface {
	UpsertOrganization(org *models.Organization) error
	UpsertEvent(e *models.Event) error
	ReplaceAttendees(eventID string, attendees []models.Attendee) error
	RecordSyncRun(run *models.SyncRun) error
}

// OrganizationProvider lists the organizations to keep in sync.
type OrganizationProvider interface {
	GetOrganizations() []models.Organization
}

// EventType defines the type of sync event.
type EventType int

const (
	// EventSyncStarted indicates a sync began.
	EventSyncStarted EventType = iota
	// EventSyncCompleted indicates a sync finished; Run.Error may hold partial failures.
	EventSyncCompleted
	// EventSyncError indicates a sync failed.
	EventSyncError
)

// Event represents a ticketing service event.
type Event struct {
	Error error
	Run   *models.SyncRun
	OrgID string
	Type  EventType
}

// Config holds configuration for the sync service.
type Config struct {
	PollInterval  time.Duration
	MaxConcurrent int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  15 * time.Minute,
		MaxConcurrent: 4,
	}
}

// Service periodically copies events and attendees from the API into the store.
type Service struct {
	api       API
	store     Store
	provider  OrganizationProvider
	cache     *cache.Cache
	eventChan chan Event
	ctx       context.Context
	cancel    context.CancelFunc
	syncing   map[string]bool
	fetchSem  chan struct{}
	wg        sync.WaitGroup
	config    Config
	mu        sync.Mutex
}

// New creates a sync service. Polling starts with Start.
func New(api API, store Store, provider OrganizationProvider, c *cache.Cache, config Config) *Service {
	defaults := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		api:       api,
		store:     store,
		provider:  provider,
		cache:     c,
		eventChan: make(chan Event, 100),
		ctx:       ctx,
		cancel:    cancel,
		syncing:   make(map[string]bool),
		fetchSem:  make(chan struct{}, config.MaxConcurrent),
		config:    config,
	}
}

// Start launches the background polling goroutine.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.poll()
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// DiscoverOrganizations fetches the organizations visible to the token and
// stores them.
func (s *Service) DiscoverOrganizations(ctx context.Context) ([]models.Organization, error) {
	orgs, err := s.api.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orgs {
		if err := s.store.UpsertOrganization(&orgs[i]); err != nil {
			return nil, err
		}
	}
	return orgs, nil
}

// Sync refreshes one organization now, bypassing cached API responses.
func (s *Service) Sync(ctx context.Context, orgID string) (*models.SyncRun, error) {
	if s.cache != nil {
		if err := s.cache.Delete(cache.Key("events", orgID)); err != nil {
			logger.Warn("failed to clear cached events", "org", orgID, "error", err)
		}
		if _, err := s.cache.Clear(cache.Key("attendees")); err != nil {
			logger.Warn("failed to clear cached attendees", "error", err)
		}
	}
	return s.syncOrganization(ctx, orgID)
}

// SyncAll syncs every known organization sequentially.
func (s *Service) SyncAll(ctx context.Context) {
	if s.provider == nil {
		return
	}
	for _, org := range s.provider.GetOrganizations() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.syncOrganization(ctx, org.ID); err != nil && !errors.Is(err, ErrSyncInProgress) {
			logger.Error("sync failed", "org", org.ID, "error", err)
		}
	}
}

func (s *Service) syncOrganization(ctx context.Context, orgID string) (*models.SyncRun, error) {
	if !s.acquire(orgID) {
		return nil, ErrSyncInProgress
	}
	defer s.release(orgID)

	run := &models.SyncRun{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		StartedAt: time.Now(),
	}
	if err := s.store.RecordSyncRun(run); err != nil {
		logger.Warn("failed to record sync start", "org", orgID, "error", err)
	}
	s.sendEvent(Event{Type: EventSyncStarted, OrgID: orgID, Run: run})

	err := s.syncEvents(ctx, run)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}
	if recErr := s.store.RecordSyncRun(run); recErr != nil {
		logger.Warn("failed to record sync result", "org", orgID, "error", recErr)
	}

	if err != nil && run.Events == 0 {
		s.sendEvent(Event{Type: EventSyncError, OrgID: orgID, Run: run, Error: err})
		return run, err
	}

	logger.Info("sync completed", "org", orgID, "events", run.Events, "attendees", run.Attendees,
		"duration", run.Duration())
	s.sendEvent(Event{Type: EventSyncCompleted, OrgID: orgID, Run: run, Error: err})
	return run, err
}

// syncEvents stores the organization's events, then fetches attendee lists
// concurrently. Attendee failures are collected without aborting the run.
func (s *Service) syncEvents(ctx context.Context, run *models.SyncRun) error {
	events, err := s.api.ListEvents(ctx, run.OrgID)
	if err != nil {
		return err
	}

	for i := range events {
		if err := s.store.UpsertEvent(&events[i]); err != nil {
			return err
		}
	}
	run.Events = len(events)

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for i := range events {
		eventID := events[i].ID
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case s.fetchSem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, ctx.Err())
				mu.Unlock()
				return
			}
			defer func() { <-s.fetchSem }()

			attendees, err := s.api.ListAttendees(ctx, eventID)
			if err == nil {
				err = s.store.ReplaceAttendees(eventID, attendees)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("event %s: %w", eventID, err))
				return
			}
			run.Attendees += len(attendees)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *Service) acquire(orgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing[orgID] {
		return false
	}
	s.syncing[orgID] = true
	return true
}

func (s *Service) release(orgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.syncing, orgID)
}

// IsSyncing reports whether orgID is being synced.
func (s *Service) IsSyncing(orgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing[orgID]
}

// poll runs the background sync loop.
func (s *Service) poll() {
	defer s.wg.Done()

	s.SyncAll(s.ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SyncAll(s.ctx)
		case <-s.ctx.Done():
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops polling and waits for the loop to exit.
func (s *Service) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}
