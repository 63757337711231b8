// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
)

// Resources that can be loading at the same time, in display order.
const (
	ResourceInitial  = "initial"
	ResourceSnapshot = "snapshot"
	ResourceSync     = "sync"
	ResourceExport   = "export"
)

var resources = []string{ResourceInitial, ResourceSnapshot, ResourceSync, ResourceExport}

// State is shared between the root model and the tabs. The root model
// writes it; tabs only read through the getters.
type State struct {
	mu sync.RWMutex

	orgs      []models.Organization
	active    *models.Organization
	dateRange models.DateRange

	snapshot *analytics.Snapshot
	built    time.Time
	stats    *services.StatsEvent
	lastRun  *models.SyncRun

	loading map[string]bool
	toasts  toastQueue
}

// NewState returns the state shown before any data has loaded.
func NewState() *State {
	return &State{
		dateRange: models.DateRangeAllTime,
		loading:   map[string]bool{ResourceInitial: true},
	}
}

// SetLoading marks resource as loading or done. Unknown resources are ignored.
func (s *State) SetLoading(resource string, loading bool) {
	if !slices.Contains(resources, resource) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[resource] = true
	} else {
		delete(s.loading, resource)
	}
}

func (s *State) isLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[resource]
}

func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

// IsInitialLoading is true until the organizations have been read.
func (s *State) IsInitialLoading() bool { return s.isLoading(ResourceInitial) }

func (s *State) IsSyncing() bool { return s.isLoading(ResourceSync) }

// GetLoadingResources lists what is loading, in display order.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, r := range resources {
		if s.loading[r] {
			out = append(out, r)
		}
	}
	return out
}

// SetOrganizations replaces the organization list and the active organization.
// A snapshot belonging to another organization is dropped.
func (s *State) SetOrganizations(orgs []models.Organization, active *models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orgs = orgs
	s.active = active
	if s.snapshot != nil && (active == nil || s.snapshot.OrgID != active.ID) {
		s.snapshot = nil
	}
}

// GetOrganizations returns a copy of the organization list.
func (s *State) GetOrganizations() []models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orgs)
}

func (s *State) GetActive() *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ActiveID returns the active organization ID, or "".
func (s *State) ActiveID() string {
	if org := s.GetActive(); org != nil {
		return org.ID
	}
	return ""
}

// SetSnapshot stores the latest analytics snapshot.
func (s *State) SetSnapshot(snap *analytics.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.built = time.Now()
}

func (s *State) GetSnapshot() *analytics.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GetLastUpdated returns when a snapshot was last stored, or the zero time.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}

func (s *State) SetDateRange(r models.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateRange = r
}

func (s *State) GetDateRange() models.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateRange
}

func (s *State) SetLastRun(run *models.SyncRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = run
}

func (s *State) GetLastRun() *models.SyncRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = &stats
}

// GetStats returns the latest store statistics, or nil before the first load.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
