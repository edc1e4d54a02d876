package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  port: 9000
  allow_origins: "https://app.example.com"
tradier:
  base_url: https://sandbox.tradier.com/v1
  token: test-token
snapshot:
  batch_size: 100
  interval: 30s
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Tradier.BaseURL != "https://sandbox.tradier.com/v1" {
		t.Errorf("Tradier.BaseURL = %q, want sandbox URL", cfg.Tradier.BaseURL)
	}
	if cfg.Snapshot.BatchSize != 100 {
		t.Errorf("Snapshot.BatchSize = %d, want 100", cfg.Snapshot.BatchSize)
	}
	if cfg.Snapshot.Interval != 30*time.Second {
		t.Errorf("Snapshot.Interval = %v, want 30s", cfg.Snapshot.Interval)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_TRADIER_TOKEN", "secret123")

	yaml := `
tradier:
  token: ${TEST_TRADIER_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tradier.Token != "secret123" {
		t.Errorf("Tradier.Token = %q, want %q", cfg.Tradier.Token, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "tradier:\n  token: x\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Feed.URL != DefaultFeedURL {
		t.Errorf("Feed.URL = %q, want default", cfg.Feed.URL)
	}
	if cfg.Snapshot.BatchSize != DefaultBatchSize {
		t.Errorf("Snapshot.BatchSize = %d, want %d", cfg.Snapshot.BatchSize, DefaultBatchSize)
	}
	if cfg.Snapshot.Interval != DefaultRefreshInterval {
		t.Errorf("Snapshot.Interval = %v, want %v", cfg.Snapshot.Interval, DefaultRefreshInterval)
	}
	if cfg.RateLimit.MaxRequests != ProductionRateLimit {
		t.Errorf("RateLimit.MaxRequests = %d, want %d", cfg.RateLimit.MaxRequests, ProductionRateLimit)
	}
}

func TestRateLimitSandboxDetection(t *testing.T) {
	yaml := `
tradier:
  base_url: https://sandbox.tradier.com/v1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.RateLimit.MaxRequests != SandboxRateLimit {
		t.Errorf("RateLimit.MaxRequests = %d, want %d for sandbox", cfg.RateLimit.MaxRequests, SandboxRateLimit)
	}
}

func TestRateLimitExplicitOverride(t *testing.T) {
	yaml := `
ratelimit:
  max_requests: 30
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.RateLimit.MaxRequests != 30 {
		t.Errorf("RateLimit.MaxRequests = %d, want explicit 30", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "tradier:\n  token: x\n")

	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: 99999\n"},
		{"bad interval", "snapshot:\n  interval: 1ms\n"},
		{"bad window", "ratelimit:\n  window: 1ms\n"},
		{"short feed timeout", "feed:\n  timeout: 1ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.yaml)
			if _, err := LoadAndValidate(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
	if cfg.Snapshot.MaxConcurrency != DefaultMaxConcurrency {
		t.Errorf("MaxConcurrency = %d, want %d", cfg.Snapshot.MaxConcurrency, DefaultMaxConcurrency)
	}
}

func TestMassiveDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Massive.BaseURL != DefaultMassiveBaseURL {
		t.Errorf("Massive.BaseURL = %q, want %q", cfg.Massive.BaseURL, DefaultMassiveBaseURL)
	}
	if cfg.Massive.Enabled() {
		t.Error("Massive fallback should be disabled without an api key")
	}
}

func TestMassiveEnabled(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"REPLACE_ME", false},
		{"real-key", true},
	}
	for _, tt := range tests {
		m := MassiveConfig{APIKey: tt.key}
		if got := m.Enabled(); got != tt.want {
			t.Errorf("Enabled() with key %q = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
