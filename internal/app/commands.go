package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/export"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
)

const (
	// DefaultTickInterval is how often expired toasts are swept.
	DefaultTickInterval = 2 * time.Second

	syncTimeout = 5 * time.Minute
)

// toastDurations holds how long each notification type stays on screen.
var toastDurations = map[NotificationType]time.Duration{
	NotificationSuccess: 5 * time.Second,
	NotificationError:   10 * time.Second,
	NotificationWarning: 5 * time.Second,
	NotificationInfo:    3 * time.Second,
}

// Commands builds the tea.Cmds the root model runs against the service
// manager. A nil manager is allowed for commands that do not touch it.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick sends a TickMsg after interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// DefaultTick sends a TickMsg after DefaultTickInterval.
func (c *Commands) DefaultTick() tea.Cmd {
	return c.Tick(DefaultTickInterval)
}

// LoadInitialData reads the organizations and store stats known at startup.
func (c *Commands) LoadInitialData() tea.Cmd {
	mgr := c.manager
	return func() tea.Msg {
		orgs, stats := mgr.InitialState()
		return InitialDataLoadedMsg{Organizations: orgs, Stats: stats}
	}
}

// LoadSnapshot builds the active organization's snapshot for r.
func (c *Commands) LoadSnapshot(r models.DateRange) tea.Cmd {
	mgr := c.manager
	return func() tea.Msg {
		snap, err := mgr.Snapshot("", r, 0)
		return SnapshotLoadedMsg{Snapshot: snap, Error: err}
	}
}

// Sync pulls orgID from the ticketing API. An empty orgID syncs the active
// organization.
func (c *Commands) Sync(orgID string) tea.Cmd {
	mgr := c.manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		run, err := mgr.Sync(ctx, orgID)
		return SyncResultMsg{OrgID: orgID, Run: run, Error: err}
	}
}

// SwitchOrganization activates the next organization.
func (c *Commands) SwitchOrganization() tea.Cmd {
	mgr := c.manager
	return func() tea.Msg {
		org, err := mgr.Organizations().Cycle()
		return SwitchOrganizationResultMsg{Organization: org, Error: err}
	}
}

// Export writes the requested CSV into dir.
func (c *Commands) Export(snap *analytics.Snapshot, org *models.Organization, req ExportMsg, dir string) tea.Cmd {
	mgr := c.manager
	return func() tea.Msg {
		path, err := writeExport(mgr, snap, org, req, dir)
		return ExportResultMsg{Kind: req.Kind, Path: path, Error: err}
	}
}

// Subscribe registers with the manager and hands the channel to the model.
func (c *Commands) Subscribe() tea.Cmd {
	ch, _ := c.manager.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// WaitForEvent blocks until the next service event arrives.
func (c *Commands) WaitForEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// ClearNotification removes a notification after delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func (c *Commands) notify(t NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: toastDurations[t]}
	}
}

// NotifySuccess shows a success toast.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return c.notify(NotificationSuccess, message)
}

// NotifyError shows an error toast.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return c.notify(NotificationError, message)
}

// NotifyWarning shows a warning toast.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return c.notify(NotificationWarning, message)
}

// NotifyInfo shows a short informational toast.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return c.notify(NotificationInfo, message)
}

// writeExport renders one export kind and writes it under dir.
func writeExport(mgr *services.Manager, snap *analytics.Snapshot, org *models.Organization, req ExportMsg, dir string) (string, error) {
	if snap == nil {
		return "", export.ErrNoData
	}
	orgName := ""
	if org != nil {
		orgName = org.DisplayName()
	}

	var (
		table *export.Table
		name  string
		err   error
	)
	switch req.Kind {
	case ExportMonthlyTrends:
		table, err = export.MonthlyTrends(snap.Trends)
		name = export.Filename("monthly-trends")
	case ExportCustomers:
		table, err = export.Customers(snap.TopCustomers)
		name = export.Filename("top-customers", orgName)
	case ExportPerformance:
		table, err = export.Performance(snap.Performance)
		name = export.Filename("event-performance", snap.Range)
	case ExportForecast:
		table, err = export.Forecast(snap.Forecast)
		name = export.Filename("forecast")
	case ExportWeeklySales:
		if len(snap.WeeklySales) == 0 {
			return "", export.ErrNoData
		}
		return export.WriteWeeklyReportFile(dir, orgName, snap.WeeklySales[0])
	case ExportEvents:
		if mgr == nil {
			return "", export.ErrNoData
		}
		events, qErr := mgr.Database().GetEvents(snap.OrgID, models.ParseDateRange(snap.Range))
		if qErr != nil {
			return "", qErr
		}
		table, err = export.Events(events)
		name = export.Filename("events", snap.Range)
	case ExportAttendees:
		if mgr == nil || req.EventID == "" {
			return "", export.ErrNoData
		}
		event, qErr := mgr.Database().GetEvent(req.EventID)
		if qErr != nil {
			return "", qErr
		}
		attendees, qErr := mgr.Database().GetAttendees(req.EventID)
		if qErr != nil {
			return "", qErr
		}
		table, err = export.Attendees(attendees)
		name = export.Filename("attendees", event.Name)
	default:
		return "", export.ErrNoData
	}
	if err != nil {
		return "", err
	}
	return export.WriteFile(dir, name, table)
}
