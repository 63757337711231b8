package models

import "time"

// StoreStats summarizes the local database contents.
type StoreStats struct {
	LastSync      time.Time
	Organizations int
	Events        int
	Attendees     int
	CacheEntries  int
}
