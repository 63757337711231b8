package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/boxoffice-tui/internal/db"
	"github.com/j-veylop/boxoffice-tui/internal/export"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
	"github.com/j-veylop/boxoffice-tui/internal/services/ticketing"
)

const maxMonthsAhead = 24

var errNoOrganization = errors.New("no organization found")

// sortKeys maps the sort query parameter to a ranking key.
var sortKeys = map[string]models.PerformanceSort{
	"revenue":           models.SortByRevenue,
	"attendees":         models.SortByAttendees,
	"sell_through_rate": models.SortBySellThrough,
	"check_in_rate":     models.SortByCheckIn,
}

func abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// orgID resolves the org_id query parameter, defaulting to the active organization.
func (s *Server) orgID(c *gin.Context) (string, bool) {
	if id := c.Query("org_id"); id != "" {
		return id, true
	}
	if active := s.deps.Organizations.GetActive(); active != nil {
		return active.ID, true
	}
	abort(c, http.StatusNotFound, errNoOrganization)
	return "", false
}

func dateRange(c *gin.Context) models.DateRange {
	return models.ParseDateRange(c.Query("range"))
}

func (s *Server) snapshot(c *gin.Context, monthsAhead int) (*analytics.Snapshot, bool) {
	id, ok := s.orgID(c)
	if !ok {
		return nil, false
	}
	snap, err := s.deps.Analytics.Snapshot(id, dateRange(c), monthsAhead)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return nil, false
	}
	return snap, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) organizations(c *gin.Context) {
	orgs := s.deps.Organizations.GetOrganizations()
	resp := gin.H{"organizations": orgs, "active": nil}
	if active := s.deps.Organizations.GetActive(); active != nil {
		resp["active"] = active.ID
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) events(c *gin.Context) {
	id, ok := s.orgID(c)
	if !ok {
		return
	}
	events, err := s.deps.Events.GetEvents(id, dateRange(c))
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) attendees(c *gin.Context) {
	eventID := c.Param("id")
	event, err := s.deps.Events.GetEvent(eventID)
	if errors.Is(err, db.ErrNotFound) {
		abort(c, http.StatusNotFound, fmt.Errorf("event %s not found", eventID))
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	attendees, err := s.deps.Events.GetAttendees(eventID)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	c.JSON(http.StatusOK, gin.H{"event": event, "attendees": attendees})
}

func (s *Server) insights(c *gin.Context) {
	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"insights":     snap.Insights,
		"topCustomers": snap.TopCustomers,
	})
}

func (s *Server) eventPerformance(c *gin.Context) {
	key := models.SortByRevenue
	if raw := c.Query("sort"); raw != "" {
		k, ok := sortKeys[raw]
		if !ok {
			abort(c, http.StatusBadRequest, fmt.Errorf("unknown sort %q", raw))
			return
		}
		key = k
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abort(c, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":            analytics.SortPerformance(snap.Performance, key, limit),
		"lowCapacityAlerts": snap.Alerts,
	})
}

func (s *Server) predictions(c *gin.Context) {
	months := 0
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMonthsAhead {
			abort(c, http.StatusBadRequest, fmt.Errorf("months must be between 1 and %d", maxMonthsAhead))
			return
		}
		months = n
	}

	snap, ok := s.snapshot(c, months)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"forecast":   snap.Forecast,
		"historical": snap.Trends,
	})
}

func (s *Server) bestDays(c *gin.Context) {
	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"bestDays": snap.BestDays})
}

func (s *Server) seasonality(c *gin.Context) {
	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Seasonality)
}

func (s *Server) weeklySales(c *gin.Context) {
	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": snap.WeeklySales})
}

func (s *Server) exportMonthlyTrends(c *gin.Context) {
	snap, ok := s.snapshot(c, 0)
	if !ok {
		return
	}

	table, err := export.MonthlyTrends(snap.Trends)
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename("monthly-trends")))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := table.WriteTo(c.Writer); err != nil {
		logger.Warn("failed to write csv export", "error", err)
	}
}

func (s *Server) sync(c *gin.Context) {
	id, ok := s.orgID(c)
	if !ok {
		return
	}

	run, err := s.deps.Syncer.Sync(c.Request.Context(), id)
	switch {
	case errors.Is(err, ticketing.ErrSyncInProgress):
		abort(c, http.StatusConflict, err)
	case errors.Is(err, ticketing.ErrUnauthorized):
		abort(c, http.StatusBadGateway, err)
	case err != nil && (run == nil || run.Events == 0):
		abort(c, http.StatusBadGateway, err)
	default:
		c.JSON(http.StatusOK, gin.H{"run": run})
	}
}
