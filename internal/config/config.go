// Package config loads the environment configuration (.env and process
// environment) and the analytics policy file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath      string
	OrganizationsPath string
	TicketingToken    string
	TicketingAPIURL   string
	APIAddr           string
	PolicyPath        string
	LogLevel          string
	LogFile           string
	SyncInterval      time.Duration
	CacheTTL          time.Duration
	APIRateLimit      float64
}

const (
	appDirName = "boxoffice"

	defaultTicketingAPIURL = "https://www.eventbriteapi.com/v3"
	defaultSyncInterval    = 15 * time.Minute
	defaultCacheTTL        = 5 * time.Minute
	defaultAPIAddr         = ":8080"
	defaultAPIRateLimit    = 2.0
)

// ErrMissingToken is returned when no ticketing API token is configured.
var ErrMissingToken = errors.New("TICKETING_TOKEN is required (set via env or .env)")

// Load reads the first .env file found, then the environment. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if path := findEnvFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	cfg := &Config{
		DatabasePath:      env("DATABASE_PATH", getDefaultPath("boxoffice.db"), parseString),
		OrganizationsPath: env("ORGANIZATIONS_PATH", getDefaultPath("organizations.json"), parseString),
		TicketingToken:    env("TICKETING_TOKEN", "", parseString),
		TicketingAPIURL:   env("TICKETING_API_URL", defaultTicketingAPIURL, parseString),
		APIAddr:           env("API_ADDR", defaultAPIAddr, parseString),
		PolicyPath:        env("POLICY_PATH", getDefaultPath("analytics.yaml"), parseString),
		LogLevel:          env("LOG_LEVEL", "info", parseString),
		LogFile:           env("LOG_FILE", getDefaultPath("boxoffice.log"), parseString),
		SyncInterval:      env("SYNC_INTERVAL", defaultSyncInterval, parseDuration),
		CacheTTL:          env("CACHE_TTL", defaultCacheTTL, parseDuration),
		APIRateLimit:      env("API_RATE_LIMIT", defaultAPIRateLimit, parsePositiveFloat),
	}

	if cfg.TicketingToken == "" {
		return nil, ErrMissingToken
	}

	for _, file := range []string{cfg.DatabasePath, cfg.OrganizationsPath} {
		if err := ensureDir(filepath.Dir(file)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// findEnvFile returns the first existing .env among getEnvPaths, or "".
func findEnvFile() string {
	for _, path := range getEnvPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// getEnvPaths lists .env candidates: the working directory, the user
// config directory, then the parent of the working directory.
func getEnvPaths() []string {
	var paths []string
	cwd, cwdErr := os.Getwd()
	if cwdErr == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}
	if cwdErr == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}
	return paths
}

// getDefaultPath returns name inside ~/.config/boxoffice, or name itself
// when there is no home directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// env reads key and parses it, returning def when the variable is unset or
// does not parse.
func env[T any](key string, def T, parse func(string) (T, bool)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	if v, ok := parse(raw); ok {
		return v
	}
	return def
}

func parseString(s string) (string, bool) { return s, true }

// parseDuration accepts Go durations ("90s", "15m") or a bare number of seconds.
func parseDuration(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

func parsePositiveFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil && f > 0
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
