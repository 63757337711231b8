package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCacheEntry returns a cached value and its expiry. Expired entries are
// returned as-is; callers decide whether to honor them.
func (db *DB) GetCacheEntry(key string) ([]byte, time.Time, bool, error) {
	var value []byte
	var expiresAt int64
	err := db.QueryRowContext(context.Background(),
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, time.UnixMilli(expiresAt), true, nil
}

// PutCacheEntry stores value under key until expiresAt.
func (db *DB) PutCacheEntry(key string, value []byte, expiresAt time.Time) error {
	query := `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`
	if _, err := db.ExecContext(context.Background(), query, key, value, expiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntry removes a single entry.
func (db *DB) DeleteCacheEntry(key string) error {
	if _, err := db.ExecContext(context.Background(), "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntries removes every entry whose key starts with prefix.
func (db *DB) DeleteCacheEntries(prefix string) (int64, error) {
	res, err := db.ExecContext(context.Background(),
		"DELETE FROM cache_entries WHERE substr(key, 1, length(?)) = ?", prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return res.RowsAffected()
}

// PurgeExpiredCacheEntries removes entries that expired before now.
func (db *DB) PurgeExpiredCacheEntries(now time.Time) (int64, error) {
	res, err := db.ExecContext(context.Background(),
		"DELETE FROM cache_entries WHERE expires_at <= ?", now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	return res.RowsAffected()
}
