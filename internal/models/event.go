package models

import "time"

// Event is a ticketed event as stored locally.
// Start and End hold the event's own wall clock (the API's "local" field).
type Event struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	URL       string    `json:"url"`
	Capacity  int       `json:"capacity"`
	IsFree    bool      `json:"isFree"`
}

// Event statuses reported by the ticketing API.
const (
	EventStatusDraft     = "draft"
	EventStatusLive      = "live"
	EventStatusStarted   = "started"
	EventStatusEnded     = "ended"
	EventStatusCompleted = "completed"
	EventStatusCanceled  = "canceled"
)

// IsOnSale reports whether tickets for the event can still be sold.
func (e *Event) IsOnSale() bool {
	return e.Status == EventStatusLive || e.Status == EventStatusStarted
}

// Attendee is one ticket holder of an event.
type Attendee struct {
	Created    time.Time `json:"created"`
	ID         string    `json:"id"`
	EventID    string    `json:"eventId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	TicketType string    `json:"ticketType"`
	Status     string    `json:"status"`
	GrossCents int64     `json:"grossCents"`
	Quantity   int       `json:"quantity"`
	CheckedIn  bool      `json:"checkedIn"`
}

// FullName joins first and last name.
func (a *Attendee) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// Revenue returns the gross ticket price in currency units.
func (a *Attendee) Revenue() float64 {
	return float64(a.GrossCents) / 100
}

// EventRecord is the minimal per-event view used for day-of-week analysis.
// A zero Start or nil Attendees marks the field as missing.
type EventRecord struct {
	Start     time.Time `json:"start"`
	Attendees *int      `json:"attendees,omitempty"`
}
