// Package organizations keeps the list of tracked organizations in a JSON
// file, watching it for external edits.
package organizations

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
)

// ErrNotFound is returned when an organization ID is unknown.
var ErrNotFound = errors.New("organization not found")

// File is the on-disk structure written by the service.
type File struct {
	Active        string                `json:"active,omitempty"`
	Organizations []models.Organization `json:"organizations"`
	Version       int                   `json:"version"`
}

// Event represents an organizations service event.
type Event struct {
	Error        error
	Organization *models.Organization
	Type         EventType
}

// EventType defines the type of organizations event.
type EventType int

const (
	EventLoaded EventType = iota
	EventChanged
	EventAdded
	EventUpdated
	EventRemoved
	EventActiveChanged
	EventError
)

// Service manages tracked organizations with file watching and change notifications.
type Service struct {
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	eventChan     chan Event
	stopChan      chan struct{}
	filePath      string
	active        string
	orgs          []models.Organization
	mu            sync.RWMutex
	timerMu       sync.Mutex
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "boxoffice", "organizations.json")
}

// New loads filePath, creating it when missing, and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		filePath = defaultPath()
	}

	s := &Service{
		orgs:      make([]models.Organization, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load organizations: %w", err)
		}
		s.mu.Lock()
		err = s.saveLocked()
		s.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create organizations file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded})
	return s, nil
}

// Path returns the watched file path.
func (s *Service) Path() string {
	return s.filePath
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetOrganizations returns a copy of all organizations with IsActive set on
// the active one.
func (s *Service) GetOrganizations() []models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := s.activeIDLocked()
	orgs := make([]models.Organization, len(s.orgs))
	for i := range s.orgs {
		orgs[i] = s.orgs[i].Clone()
		orgs[i].IsActive = orgs[i].ID == active
	}
	return orgs
}

// GetActive returns the active organization, the first one when none is
// selected, or nil when the list is empty.
func (s *Service) GetActive() *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := s.activeIDLocked()
	for i := range s.orgs {
		if s.orgs[i].ID == active {
			org := s.orgs[i].Clone()
			org.IsActive = true
			return &org
		}
	}
	return nil
}

// Get returns the organization with the given ID.
func (s *Service) Get(id string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		org := s.orgs[i].Clone()
		org.IsActive = org.ID == s.activeIDLocked()
		return &org, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetActive selects the organization used by the dashboard.
func (s *Service) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := s.active
	s.active = id
	if err := s.saveLocked(); err != nil {
		s.active = prev
		return fmt.Errorf("failed to save organizations: %w", err)
	}

	s.sendEvent(Event{Type: EventActiveChanged})
	return nil
}

// Cycle activates the organization after the current one, wrapping around.
func (s *Service) Cycle() (*models.Organization, error) {
	s.mu.RLock()
	if len(s.orgs) == 0 {
		s.mu.RUnlock()
		return nil, ErrNotFound
	}
	next := s.orgs[(s.indexLocked(s.activeIDLocked())+1)%len(s.orgs)].ID
	s.mu.RUnlock()

	if err := s.SetActive(next); err != nil {
		return nil, err
	}
	return s.GetActive(), nil
}

// Upsert adds org or updates the stored name. AddedAt is preserved for
// existing entries. The first organization becomes active.
func (s *Service) Upsert(org models.Organization) error {
	if org.ID == "" {
		return errors.New("organization ID is required")
	}

	org.IsActive = false

	s.mu.Lock()
	defer s.mu.Unlock()

	eventType := EventUpdated
	prev := slices.Clone(s.orgs)
	if i := s.indexLocked(org.ID); i >= 0 {
		existing := s.orgs[i]
		if org.Name == "" {
			org.Name = existing.Name
		}
		if org.AddedAt.IsZero() {
			org.AddedAt = existing.AddedAt
		}
		if org.LastSynced.IsZero() {
			org.LastSynced = existing.LastSynced
		}
		if org == existing {
			return nil
		}
		s.orgs[i] = org
	} else {
		if org.AddedAt.IsZero() {
			org.AddedAt = time.Now()
		}
		s.orgs = append(s.orgs, org)
		eventType = EventAdded
	}

	if err := s.saveLocked(); err != nil {
		s.orgs = prev
		return fmt.Errorf("failed to save organizations: %w", err)
	}

	s.sendEvent(Event{Type: eventType, Organization: &org})
	return nil
}

// MarkSynced records the time of the last successful sync.
func (s *Service) MarkSynced(id string, at time.Time) error {
	org, err := s.Get(id)
	if err != nil {
		return err
	}
	org.LastSynced = at
	return s.Upsert(*org)
}

// Remove deletes an organization. When it was active the first remaining one
// becomes active.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := s.orgs[idx]
	prev := slices.Clone(s.orgs)
	prevActive := s.active
	s.orgs = slices.Delete(s.orgs, idx, idx+1)
	if s.active == id {
		s.active = ""
	}

	if err := s.saveLocked(); err != nil {
		s.orgs = prev
		s.active = prevActive
		return fmt.Errorf("failed to save organizations: %w", err)
	}

	s.sendEvent(Event{Type: EventRemoved, Organization: &removed})
	return nil
}

// Count returns the number of organizations.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orgs)
}

func (s *Service) indexLocked(id string) int {
	return slices.IndexFunc(s.orgs, func(o models.Organization) bool { return o.ID == id })
}

// activeIDLocked resolves the active ID, falling back to the first entry.
func (s *Service) activeIDLocked() string {
	if s.active != "" && s.indexLocked(s.active) >= 0 {
		return s.active
	}
	if len(s.orgs) > 0 {
		return s.orgs[0].ID
	}
	return ""
}

// parse accepts the current file format and a bare array of organizations.
func parse(data []byte) ([]models.Organization, string, error) {
	var file models.RawOrganizationsFile
	if err := json.Unmarshal(data, &file); err == nil {
		return toOrganizations(file.Organizations), file.Active, nil
	}

	var legacy []models.RawOrganizationData
	if err := json.Unmarshal(data, &legacy); err == nil {
		return toOrganizations(legacy), "", nil
	}

	return nil, "", errors.New("failed to parse organizations file: invalid format")
}

func toOrganizations(raw []models.RawOrganizationData) []models.Organization {
	orgs := make([]models.Organization, 0, len(raw))
	for i := range raw {
		if raw[i].ID == "" {
			continue
		}
		orgs = append(orgs, raw[i].ToOrganization())
	}
	return orgs
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	orgs, active, err := parse(data)
	if err != nil {
		return err
	}

	s.orgs = orgs
	s.active = active
	return nil
}

// saveLocked writes the file atomically. Caller must hold s.mu.
func (s *Service) saveLocked() error {
	file := File{
		Active:        s.active,
		Organizations: s.orgs,
		Version:       1,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal organizations: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so atomic renames are seen.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.timerMu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.timerMu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	if err := s.load(); err != nil {
		logger.Warn("failed to reload organizations", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventChanged})
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

// Close stops the file watcher.
func (s *Service) Close() error {
	close(s.stopChan)

	s.timerMu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.timerMu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
