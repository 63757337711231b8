// Package cache provides a TTL cache for ticketing API responses and computed
// analytics. Entries live in a Store, normally the sqlite database, so they
// survive restarts.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/logger"
)

// Namespace prefixes every key written by the application.
const Namespace = "boxoffice_"

// DefaultTTL is used when New is given a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// Store persists cache entries. *db.DB implements it.
type Store interface {
	GetCacheEntry(key string) ([]byte, time.Time, bool, error)
	PutCacheEntry(key string, value []byte, expiresAt time.Time) error
	DeleteCacheEntry(key string) error
	DeleteCacheEntries(prefix string) (int64, error)
	PurgeExpiredCacheEntries(now time.Time) (int64, error)
}

// Cache maps keys to values with an expiry.
type Cache struct {
	store Store
	now   func() time.Time
	ttl   time.Duration
}

// New creates a cache over store. A nil store keeps entries in memory.
func New(store Store, ttl time.Duration) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl, now: time.Now}
}

// Key joins parts under the application namespace, e.g. Key("events", "42")
// is "boxoffice_events_42".
func Key(parts ...string) string {
	return Namespace + strings.Join(parts, "_")
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key and when it expires. Expired entries
// are deleted and reported as missing. Store failures are logged and
// reported as missing.
func (c *Cache) Get(key string) ([]byte, time.Time, bool) {
	value, expiresAt, ok, err := c.store.GetCacheEntry(key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}
	if !c.now().Before(expiresAt) {
		if err := c.store.DeleteCacheEntry(key); err != nil {
			logger.Warn("failed to evict expired cache entry", "key", key, "error", err)
		}
		return nil, time.Time{}, false
	}
	return value, expiresAt, true
}

// Set stores value under key for the default TTL.
func (c *Cache) Set(key string, value []byte) error {
	return c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key for ttl.
func (c *Cache) SetWithTTL(key string, value []byte, ttl time.Duration) error {
	return c.store.PutCacheEntry(key, value, c.now().Add(ttl))
}

// Delete removes key.
func (c *Cache) Delete(key string) error {
	return c.store.DeleteCacheEntry(key)
}

// Clear removes every key starting with prefix. An empty prefix clears the
// whole application namespace.
func (c *Cache) Clear(prefix string) (int64, error) {
	if prefix == "" {
		prefix = Namespace
	}
	return c.store.DeleteCacheEntries(prefix)
}

// Purge drops all expired entries.
func (c *Cache) Purge() (int64, error) {
	return c.store.PurgeExpiredCacheEntries(c.now())
}

// GetJSON decodes the value under key into v. It reports false on a miss or
// when the stored value does not decode.
func (c *Cache) GetJSON(key string, v any) bool {
	data, _, ok := c.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		_ = c.store.DeleteCacheEntry(key)
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key for the default TTL.
func (c *Cache) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(key, data)
}

type memoryEntry struct {
	expiresAt time.Time
	value     []byte
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	items map[string]memoryEntry
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

// GetCacheEntry implements Store.
func (m *MemoryStore) GetCacheEntry(key string) ([]byte, time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[key]
	if !ok {
		return nil, time.Time{}, false, nil
	}
	return e.value, e.expiresAt, true, nil
}

// PutCacheEntry implements Store.
func (m *MemoryStore) PutCacheEntry(key string, value []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// DeleteCacheEntry implements Store.
func (m *MemoryStore) DeleteCacheEntry(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// DeleteCacheEntries implements Store.
func (m *MemoryStore) DeleteCacheEntries(prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			n++
		}
	}
	return n, nil
}

// PurgeExpiredCacheEntries implements Store.
func (m *MemoryStore) PurgeExpiredCacheEntries(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
