package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TIMESHEET_MODE", "TIMESHEET_DB", "TIMESHEET_STATE_DIR", "TIMESHEET_API_URL",
		"TIMESHEET_AUTH_TOKEN", "TIMESHEET_PORT", "PORT", "TIMESHEET_LOG_LEVEL", "TIMESHEET_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeLocal || cfg.Port != "3000" || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "mode: remote\napi_url: http://example.test/\nauth_token: from-file\nrequest_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TIMESHEET_AUTH_TOKEN", "from-env")
	t.Setenv("PORT", "8080")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeRemote || cfg.APIURL != "http://example.test" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.AuthToken != "from-env" || cfg.Port != "8080" {
		t.Fatalf("env must override file: %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.RequestTimeout)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMESHEET_MODE", "remote")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("remote mode without api url must fail")
	}

	t.Setenv("TIMESHEET_MODE", "cloud")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("unknown mode must fail")
	}

	t.Setenv("TIMESHEET_MODE", "")
	t.Setenv("TIMESHEET_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("bad timeout must fail")
	}
}
