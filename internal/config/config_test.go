package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnv(t *testing.T) {
	t.Setenv("BOX_TEST_STRING", "value")
	t.Setenv("BOX_TEST_EMPTY", "")

	if got := env("BOX_TEST_STRING", "default", parseString); got != "value" {
		t.Errorf("env(set) = %q, want value", got)
	}
	if got := env("BOX_TEST_EMPTY", "default", parseString); got != "default" {
		t.Errorf("env(empty) = %q, want default", got)
	}
	if got := env("BOX_TEST_UNSET", "default", parseString); got != "default" {
		t.Errorf("env(unset) = %q, want default", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Duration
		wantOK bool
	}{
		{"1m", time.Minute, true},
		{"90s", 90 * time.Second, true},
		{"60", 60 * time.Second, true},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDuration(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseDuration(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}

	t.Setenv("BOX_TEST_DURATION", "soon")
	if got := env("BOX_TEST_DURATION", time.Second, parseDuration); got != time.Second {
		t.Errorf("unparsable duration should fall back, got %v", got)
	}
}

func TestParsePositiveFloat(t *testing.T) {
	for in, want := range map[string]float64{"0.5": 0.5, "-3": 2, "0": 2, "fast": 2} {
		t.Setenv("BOX_TEST_FLOAT", in)
		if got := env("BOX_TEST_FLOAT", 2.0, parsePositiveFloat); got != want {
			t.Errorf("API rate %q = %v, want %v", in, got, want)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}
	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	want := filepath.Join(home, ".config", "boxoffice", "boxoffice.db")
	if got := getDefaultPath("boxoffice.db"); got != want {
		t.Errorf("getDefaultPath() = %q, want %q", got, want)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Fatal("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TICKETING_TOKEN", "secret-token")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "data", "db.sqlite"))
	t.Setenv("ORGANIZATIONS_PATH", filepath.Join(tmpDir, "orgs", "organizations.json"))
	t.Setenv("SYNC_INTERVAL", "")
	t.Setenv("API_RATE_LIMIT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TicketingToken != "secret-token" {
		t.Errorf("TicketingToken = %q, want %q", cfg.TicketingToken, "secret-token")
	}
	if cfg.SyncInterval != defaultSyncInterval {
		t.Errorf("SyncInterval = %v, want %v", cfg.SyncInterval, defaultSyncInterval)
	}
	if cfg.APIRateLimit != 5 {
		t.Errorf("APIRateLimit = %v, want 5", cfg.APIRateLimit)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "orgs")); err != nil {
		t.Errorf("organizations directory not created: %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db.sqlite"))
	t.Setenv("ORGANIZATIONS_PATH", filepath.Join(dir, "organizations.json"))
	// Registered with t.Setenv so the values loaded from .env are undone.
	t.Setenv("TICKETING_TOKEN", "")
	t.Setenv("CACHE_TTL", "")
	os.Unsetenv("TICKETING_TOKEN")
	os.Unsetenv("CACHE_TTL")

	envFile := "TICKETING_TOKEN=from-file\nCACHE_TTL=45s\nAPI_ADDR=:9999\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("API_ADDR", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TicketingToken != "from-file" {
		t.Errorf("TicketingToken = %q, want from-file", cfg.TicketingToken)
	}
	if cfg.CacheTTL != 45*time.Second {
		t.Errorf("CacheTTL = %v, want 45s", cfg.CacheTTL)
	}
	if cfg.APIAddr != ":7000" {
		t.Errorf("APIAddr = %q, the environment should win over .env", cfg.APIAddr)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TICKETING_TOKEN", "")
	t.Setenv("HOME", tmpDir)
	t.Chdir(tmpDir)

	_, err := Load()
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("Load() error = %v, want ErrMissingToken", err)
	}
}
