// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"time"
)

// Organization is a ticketing account whose events are tracked by the dashboard.
type Organization struct {
	AddedAt    time.Time `json:"addedAt"`
	LastSynced time.Time `json:"lastSynced,omitempty"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"isActive,omitempty"`
}

// DisplayName returns the organization name, falling back to its ID.
func (o *Organization) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}

// Clone returns a copy of the organization.
func (o *Organization) Clone() Organization {
	return Organization{
		ID:         o.ID,
		Name:       o.Name,
		AddedAt:    o.AddedAt,
		LastSynced: o.LastSynced,
		IsActive:   o.IsActive,
	}
}

// RawOrganizationData is the JSON shape of one entry in organizations.json.
// Timestamps may be ISO strings or Unix numbers.
type RawOrganizationData struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	AddedAt    json.RawMessage `json:"addedAt,omitempty"`
	LastSynced json.RawMessage `json:"lastSynced,omitempty"`
}

// RawOrganizationsFile is the top-level structure of organizations.json.
type RawOrganizationsFile struct {
	Active        string                `json:"active,omitempty"`
	Organizations []RawOrganizationData `json:"organizations"`
	Version       int                   `json:"version"`
}

// ToOrganization converts RawOrganizationData to Organization, parsing date fields.
func (r *RawOrganizationData) ToOrganization() Organization {
	org := Organization{
		ID:   r.ID,
		Name: r.Name,
	}
	if len(r.AddedAt) > 0 {
		org.AddedAt = parseTimeField(r.AddedAt)
	}
	if len(r.LastSynced) > 0 {
		org.LastSynced = parseTimeField(r.LastSynced)
	}
	return org
}

// parseTimeField attempts to parse a JSON time value as either ISO string or Unix timestamp.
func parseTimeField(data json.RawMessage) time.Time {
	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, strVal); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02T15:04:05.000Z", strVal); err == nil {
			return t
		}
		return time.Time{}
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal > 1e12 {
			return time.UnixMilli(int64(numVal))
		}
		return time.Unix(int64(numVal), 0)
	}

	return time.Time{}
}
