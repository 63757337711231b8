package app

import (
	"time"

	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
)

// TickMsg sweeps expired notifications.
type TickMsg struct {
	Time time.Time
}

// InitialDataLoadedMsg contains the organizations and stats known at startup.
type InitialDataLoadedMsg struct {
	Organizations services.OrganizationsChangedEvent
	Stats         services.StatsEvent
}

// SnapshotLoadedMsg contains a freshly built analytics snapshot.
type SnapshotLoadedMsg struct {
	Snapshot *analytics.Snapshot
	Error    error
}

// SyncResultMsg contains the outcome of an on-demand sync.
type SyncResultMsg struct {
	Error error
	Run   *models.SyncRun
	OrgID string
}

// SwitchOrganizationResultMsg contains the result of an organization switch.
type SwitchOrganizationResultMsg struct {
	Organization *models.Organization
	Error        error
}

// DateRangeChangedMsg is sent after the date range changes.
type DateRangeChangedMsg struct {
	Range models.DateRange
}

// ExportKind selects what an export writes.
type ExportKind int

const (
	// ExportMonthlyTrends writes the monthly trend table.
	ExportMonthlyTrends ExportKind = iota
	// ExportCustomers writes the top customers table.
	ExportCustomers
	// ExportPerformance writes the event performance table.
	ExportPerformance
	// ExportForecast writes the forecast table.
	ExportForecast
	// ExportWeeklySales writes the latest weekly sales report.
	ExportWeeklySales
	// ExportEvents writes every event in the date range.
	ExportEvents
	// ExportAttendees writes the attendee list of one event.
	ExportAttendees
)

// String returns the display name for an export kind.
func (k ExportKind) String() string {
	switch k {
	case ExportMonthlyTrends:
		return "monthly trends"
	case ExportCustomers:
		return "top customers"
	case ExportPerformance:
		return "event performance"
	case ExportForecast:
		return "forecast"
	case ExportWeeklySales:
		return "weekly sales"
	case ExportEvents:
		return "events"
	case ExportAttendees:
		return "attendees"
	default:
		return "unknown"
	}
}

// ExportMsg requests exporting data. EventID is used by ExportAttendees.
type ExportMsg struct {
	EventID string
	Kind    ExportKind
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Error error
	Path  string
	Kind  ExportKind
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// RefreshMsg requests a snapshot rebuild; Sync also pulls from the API first.
type RefreshMsg struct {
	Sync bool
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
