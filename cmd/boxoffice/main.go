// Package main is the entry point for the Box Office TUI.
// It initializes configuration and services, then runs either the Bubble Tea
// dashboard or one of the headless subcommands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/api"
	"github.com/j-veylop/boxoffice-tui/internal/app"
	"github.com/j-veylop/boxoffice-tui/internal/config"
	"github.com/j-veylop/boxoffice-tui/internal/logger"
	"github.com/j-veylop/boxoffice-tui/internal/services"
	"github.com/j-veylop/boxoffice-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/boxoffice-tui/internal/ui/tabs/events"
	"github.com/j-veylop/boxoffice-tui/internal/ui/tabs/info"
	"github.com/j-veylop/boxoffice-tui/internal/ui/tabs/predictions"
	"github.com/j-veylop/boxoffice-tui/internal/version"
)

const syncTimeout = 5 * time.Minute

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "-v", "--version", "version":
		fmt.Println(version.Info())
		return
	case "-h", "--help", "help":
		printUsage()
		return
	case "serve":
		err = withServices(serve)
	case "sync":
		err = withServices(syncOnce)
	case "":
		err = withServices(runTUI)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withServices loads configuration, starts logging and the service manager,
// and hands them to fn. Everything is closed when fn returns.
func withServices(fn func(*config.Config, *services.Manager) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer closeQuietly(logFile)

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to load analytics policy: %w", err)
	}

	mgr, err := services.NewManager(cfg, policy)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	logger.Info("starting", "version", version.GetVersion(), "database", cfg.DatabasePath)
	return fn(cfg, mgr)
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// runTUI runs the interactive dashboard.
func runTUI(cfg *config.Config, mgr *services.Manager) error {
	mgr.Start()

	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		predictions.New(state),
		events.New(state),
		info.New(state, cfg, mgr.Policy()),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// serve runs the JSON API with background syncing until interrupted.
func serve(cfg *config.Config, mgr *services.Manager) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr.Start()

	server := api.New(cfg.APIAddr, api.Deps{
		Organizations: mgr.Organizations(),
		Events:        mgr.Database(),
		Analytics:     mgr.Analytics(),
		Syncer:        mgr,
	})

	fmt.Printf("Serving API on %s\n", cfg.APIAddr)
	return server.Run(ctx)
}

// syncOnce syncs the active organization and prints a summary.
func syncOnce(_ *config.Config, mgr *services.Manager) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mgr.Organizations().Count() == 0 {
		discoverCtx, cancel := context.WithTimeout(ctx, time.Minute)
		_, err := mgr.DiscoverOrganizations(discoverCtx)
		cancel()
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	run, err := mgr.Sync(ctx, "")
	if run != nil {
		fmt.Printf("Synced %d events, %d attendees in %s\n",
			run.Events, run.Attendees, run.Duration().Round(time.Millisecond))
	}
	return err
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Box Office TUI - ticket sales analytics and forecasting

Usage:
  boxoffice [command]

Commands:
  (none)          Run the terminal dashboard
  serve           Serve the JSON API and keep syncing in the background
  sync            Sync the active organization once and exit
  version         Show version information
  help            Show this help message

Keyboard Shortcuts:
  1-4             Switch between tabs (Dashboard, Predictions, Events, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll or select
  t               Cycle date range
  o               Switch organization
  r               Sync now
  Ctrl+R          Recompute analytics
  e               Export the current view as CSV
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  TICKETING_TOKEN     Ticketing API token (required)
  TICKETING_API_URL   Ticketing API base URL
  DATABASE_PATH       SQLite database path
  ORGANIZATIONS_PATH  Organizations JSON file path
  POLICY_PATH         Analytics policy YAML file
  SYNC_INTERVAL       Background sync interval (default: 15m)
  CACHE_TTL           Analytics cache lifetime (default: 5m)
  API_ADDR            Listen address for serve (default: :8080)
  API_RATE_LIMIT      Ticketing API requests per second (default: 2)
  LOG_LEVEL           debug, info, warn or error
  LOG_FILE            Log file path

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/boxoffice/.env
  - ~/.boxoffice/.env`)
}
