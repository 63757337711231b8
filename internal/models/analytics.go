package models

import "time"

// MonthlyAggregate is one calendar month of activity. Month is "YYYY-MM".
type MonthlyAggregate struct {
	Month     string  `json:"month"`
	Events    int     `json:"events"`
	Attendees int     `json:"attendees"`
	Revenue   float64 `json:"revenue"`
}

// TicketTypeCount is the number of attendees holding one ticket class.
type TicketTypeCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Insights aggregates headline numbers for an organization.
type Insights struct {
	MonthlyTrends        []MonthlyAggregate `json:"monthlyTrends"`
	TicketTypes          []TicketTypeCount  `json:"ticketTypes"`
	TotalEvents          int                `json:"totalEvents"`
	TotalAttendees       int                `json:"totalAttendees"`
	UniqueCustomers      int                `json:"uniqueCustomers"`
	RepeatCustomers      int                `json:"repeatCustomers"`
	RepeatCustomerRate   float64            `json:"repeatCustomerRate"` // percent
	AvgAttendeesPerEvent float64            `json:"avgAttendeesPerEvent"`
	TotalRevenue         float64            `json:"totalRevenue"`
}

// EventPerformance ranks a single event.
type EventPerformance struct {
	Start       time.Time `json:"start"`
	EventID     string    `json:"eventId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Capacity    int       `json:"capacity"`
	Attendees   int       `json:"attendees"`
	CheckedIn   int       `json:"checkedIn"`
	Revenue     float64   `json:"revenue"`
	SellThrough float64   `json:"sellThroughRate"` // percent, 0 when capacity is unknown
	CheckInRate float64   `json:"checkInRate"`     // percent
}

// Customer is one attendee email with lifetime totals.
type Customer struct {
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	EventsAttended int     `json:"eventsAttended"`
	LifetimeValue  float64 `json:"lifetimeValue"`
}

// WeeklyEventSales is one event's contribution to a sales week.
type WeeklyEventSales struct {
	Date    time.Time `json:"date"`
	Name    string    `json:"name"`
	Tickets int       `json:"tickets"`
	Revenue float64   `json:"revenue"`
}

// WeeklySales groups event sales by the Monday that starts the week.
type WeeklySales struct {
	WeekStart    time.Time          `json:"weekStart"`
	Events       []WeeklyEventSales `json:"events"`
	TotalTickets int                `json:"totalTickets"`
	TotalRevenue float64            `json:"totalRevenue"`
}

// WeekEnd returns the Sunday closing the week.
func (w *WeeklySales) WeekEnd() time.Time {
	return w.WeekStart.AddDate(0, 0, 6)
}

// AlertPriority ranks low-capacity alerts.
type AlertPriority string

const (
	// AlertPriorityHigh marks events far below target sales.
	AlertPriorityHigh AlertPriority = "high"
	// AlertPriorityMedium marks events below target sales.
	AlertPriorityMedium AlertPriority = "medium"
)

// LowCapacityAlert flags an upcoming event with weak sales.
type LowCapacityAlert struct {
	Priority AlertPriority `json:"priority"`
	EventPerformance
}

// PerformanceSort selects the ranking key for event performance tables.
type PerformanceSort int

const (
	// SortByRevenue ranks by gross revenue.
	SortByRevenue PerformanceSort = iota
	// SortByAttendees ranks by ticket count.
	SortByAttendees
	// SortBySellThrough ranks by share of capacity sold.
	SortBySellThrough
	// SortByCheckIn ranks by share of attendees checked in.
	SortByCheckIn
)

// String returns the display name for a sort key.
func (s PerformanceSort) String() string {
	switch s {
	case SortByRevenue:
		return "Revenue"
	case SortByAttendees:
		return "Attendees"
	case SortBySellThrough:
		return "Sell-through"
	case SortByCheckIn:
		return "Check-in"
	default:
		return "Unknown"
	}
}

// Next cycles to the next sort key.
func (s PerformanceSort) Next() PerformanceSort {
	return (s + 1) % 4
}

// Less reports whether a ranks after b under this key (descending order).
func (s PerformanceSort) Less(a, b *EventPerformance) bool {
	switch s {
	case SortByAttendees:
		return a.Attendees > b.Attendees
	case SortBySellThrough:
		return a.SellThrough > b.SellThrough
	case SortByCheckIn:
		return a.CheckInRate > b.CheckInRate
	default:
		return a.Revenue > b.Revenue
	}
}

// PerformanceLimits are the selectable table sizes; 0 shows every event.
var PerformanceLimits = []int{10, 20, 50, 0}

// SyncRun records one synchronization pass against the ticketing API.
type SyncRun struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	ID         string    `json:"id"`
	OrgID      string    `json:"orgId"`
	Error      string    `json:"error,omitempty"`
	Events     int       `json:"events"`
	Attendees  int       `json:"attendees"`
}

// Duration returns how long the run took.
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run finished without error.
func (r *SyncRun) Succeeded() bool {
	return r.Error == "" && !r.FinishedAt.IsZero()
}
