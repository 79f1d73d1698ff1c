package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/solatis/rulefold/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rulefold.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Engine.Workers != runtime.NumCPU() {
			t.Errorf("expected workers %d, got %d", runtime.NumCPU(), cfg.Engine.Workers)
		}
		if cfg.Engine.MaxExpansion != types.DefaultMaxExpansion {
			t.Errorf("expected max_expansion %d, got %d", types.DefaultMaxExpansion, cfg.Engine.MaxExpansion)
		}
		if !cfg.Engine.DetectOverlaps {
			t.Errorf("expected detect_overlaps true")
		}
		if cfg.Engine.CacheSize != 4096 {
			t.Errorf("expected cache_size 4096, got %d", cfg.Engine.CacheSize)
		}
		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
		}
		if cfg.Server.Port != 50061 {
			t.Errorf("expected port 50061, got %d", cfg.Server.Port)
		}
		if cfg.Server.RequestTimeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Server.RequestTimeout)
		}
		if cfg.Server.MaxRecords != 100000 {
			t.Errorf("expected max_records 100000, got %d", cfg.Server.MaxRecords)
		}
		if cfg.Server.RateLimit != 0 || cfg.Server.RateBurst != 8 {
			t.Errorf("expected rate limit disabled with burst 8, got %v/%d", cfg.Server.RateLimit, cfg.Server.RateBurst)
		}
		if cfg.Modes.File != "" || cfg.Database.URL != "" {
			t.Errorf("expected empty modes.file and database.url, got %q %q", cfg.Modes.File, cfg.Database.URL)
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := writeConfig(t, `engine:
  workers: 2
  detect_overlaps: false
modes:
  file: /etc/rulefold/modes.yaml
server:
  request_timeout: 5s
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Engine.Workers != 2 {
			t.Errorf("expected workers 2, got %d", cfg.Engine.Workers)
		}
		if cfg.Engine.DetectOverlaps {
			t.Errorf("expected detect_overlaps false")
		}
		if cfg.Modes.File != "/etc/rulefold/modes.yaml" {
			t.Errorf("unexpected modes.file %q", cfg.Modes.File)
		}
		if cfg.Server.RequestTimeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %v", cfg.Server.RequestTimeout)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("RF_SERVER_PORT", "9999")
		t.Setenv("RF_ENGINE_MAX_EXPANSION", "64")

		cfg, err := LoadConfig(writeConfig(t, "server:\n  port: 7000\n"))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Port != 9999 {
			t.Errorf("expected env port 9999 over file, got %d", cfg.Server.Port)
		}
		if cfg.Engine.MaxExpansion != 64 {
			t.Errorf("expected max_expansion 64, got %d", cfg.Engine.MaxExpansion)
		}
	})

	t.Run("invalid port range", func(t *testing.T) {
		t.Setenv("RF_SERVER_PORT", "70000")
		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for port > 65535")
		}
	})

	t.Run("invalid workers", func(t *testing.T) {
		t.Setenv("RF_ENGINE_WORKERS", "0")
		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for zero workers")
		}
	})

	t.Run("rate limit", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "server:\n  rate_limit: 2.5\n  rate_burst: 4\n"))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.RateLimit != 2.5 || cfg.Server.RateBurst != 4 {
			t.Errorf("expected rate 2.5/4, got %v/%d", cfg.Server.RateLimit, cfg.Server.RateBurst)
		}

		t.Setenv("RF_SERVER_RATE_LIMIT", "-1")
		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for negative rate_limit")
		}
	})

	t.Run("rate limit without burst", func(t *testing.T) {
		if _, err := LoadConfig(writeConfig(t, "server:\n  rate_limit: 1\n  rate_burst: 0\n")); err == nil {
			t.Error("expected error for zero rate_burst")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestLoadConfig_RejectsPasswords(t *testing.T) {
	const want = "database passwords not allowed in config files (use RF_DATABASE_URL environment variable)"

	t.Run("password key", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "database:\n  password: hunter2\n"))
		if err == nil || err.Error() != want {
			t.Fatalf("expected %q, got %v", want, err)
		}
	})

	t.Run("password in url", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "database:\n  url: postgres://cdbs:hunter2@db/catalog\n"))
		if err == nil || err.Error() != want {
			t.Fatalf("expected %q, got %v", want, err)
		}
	})

	t.Run("url without password allowed", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "database:\n  url: sqlite:///var/lib/catalog.db\n"))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Database.URL != "sqlite:///var/lib/catalog.db" {
			t.Errorf("unexpected url %q", cfg.Database.URL)
		}
	})

	t.Run("password from environment allowed", func(t *testing.T) {
		t.Setenv("RF_DATABASE_URL", "postgres://cdbs:hunter2@db/catalog")
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Database.URL != "postgres://cdbs:hunter2@db/catalog" {
			t.Errorf("unexpected url %q", cfg.Database.URL)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing optional", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(dir, ".env"), false); err != nil {
			t.Errorf("expected nil for missing optional env file, got %v", err)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(dir, ".env"), true); err == nil {
			t.Error("expected error for missing required env file")
		}
	})

	t.Run("loads without overriding", func(t *testing.T) {
		path := filepath.Join(dir, "test.env")
		if err := os.WriteFile(path, []byte("RF_SERVER_HOST=10.0.0.1\nRF_ENGINE_WORKERS=3\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("RF_ENGINE_WORKERS", "5")
		t.Setenv("RF_SERVER_HOST", "")
		os.Unsetenv("RF_SERVER_HOST")

		if err := LoadEnvFile(path, true); err != nil {
			t.Fatalf("LoadEnvFile failed: %v", err)
		}
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Host != "10.0.0.1" {
			t.Errorf("expected host from env file, got %s", cfg.Server.Host)
		}
		if cfg.Engine.Workers != 5 {
			t.Errorf("expected existing env to win, got %d", cfg.Engine.Workers)
		}
	})
}
