// Package api serves dashboard data as JSON over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/models"
	"github.com/j-veylop/boxoffice-tui/internal/services/analytics"
)

const shutdownTimeout = 5 * time.Second

// OrganizationSource lists tracked organizations.
type OrganizationSource interface {
	GetOrganizations() []models.Organization
	GetActive() *models.Organization
}

// EventStore reads synced events.
type EventStore interface {
	GetEvents(orgID string, r models.DateRange) ([]models.Event, error)
	GetEvent(id string) (*models.Event, error)
	GetAttendees(eventID string) ([]models.Attendee, error)
}

// SnapshotSource builds analytics snapshots.
type SnapshotSource interface {
	Snapshot(orgID string, r models.DateRange, monthsAhead int) (*analytics.Snapshot, error)
}

// Syncer triggers an on-demand sync.
type Syncer interface {
	Sync(ctx context.Context, orgID string) (*models.SyncRun, error)
}

// Deps are the data sources behind the API.
type Deps struct {
	Organizations OrganizationSource
	Events        EventStore
	Analytics     SnapshotSource
	Syncer        Syncer
}

// Server is the JSON API server.
type Server struct {
	router *gin.Engine
	deps   Deps
	addr   string
}

// New builds the router.
func New(addr string, deps Deps) *Server {
	s := &Server{
		router: gin.New(),
		deps:   deps,
		addr:   addr,
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.GET("/health", s.health)
	api.GET("/organizations", s.organizations)
	api.GET("/events", s.events)
	api.GET("/event/:id/attendees", s.attendees)
	api.GET("/insights", s.insights)
	api.GET("/event-performance", s.eventPerformance)
	api.GET("/predictions", s.predictions)
	api.GET("/best-days", s.bestDays)
	api.GET("/seasonality", s.seasonality)
	api.GET("/weekly-sales", s.weeklySales)
	api.GET("/export/monthly-trends.csv", s.exportMonthlyTrends)
	api.POST("/sync", s.sync)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("api stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
