package config

import "time"

// ServerConfig is the root configuration for the options backend.
type ServerConfig struct {
	Server    HTTPConfig      `yaml:"server"`
	Feed      FeedConfig      `yaml:"feed"`
	Tradier   TradierConfig   `yaml:"tradier"`
	Massive   MassiveConfig   `yaml:"massive"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Port         int    `yaml:"port"`
	AllowOrigins string `yaml:"allow_origins"` // Comma-separated CORS origins
}

// FeedConfig holds OCC symbol feed settings.
type FeedConfig struct {
	URL             string        `yaml:"url"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshSchedule string        `yaml:"refresh_schedule"` // Cron spec for the daily refresh
}

// TradierConfig holds vendor API settings.
type TradierConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// MassiveConfig holds the fallback chain vendor settings. The fallback
// is disabled while APIKey is empty.
type MassiveConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Enabled reports whether the fallback vendor is configured.
func (m MassiveConfig) Enabled() bool {
	return m.APIKey != "" && m.APIKey != "REPLACE_ME"
}

// RateLimitConfig holds outbound rate limiter settings.
// MaxRequests of 0 auto-detects from the vendor base URL: sandbox
// deployments get 60, production gets 120.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// SnapshotConfig holds snapshot refresher settings.
type SnapshotConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	Interval       time.Duration `yaml:"interval"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	StartupDelay   time.Duration `yaml:"startup_delay"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}
