package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultPort         = 8000
	DefaultAllowOrigins = "*"

	DefaultFeedURL             = "https://marketdata.theocc.com/delo-download?prodType=ALL&downloadFields=US;OS;SN;EXCH;PL;ONN&format=txt"
	DefaultFeedTimeout         = 30 * time.Second
	DefaultFeedRefreshSchedule = "10 0 * * *"

	DefaultTradierBaseURL = "https://api.tradier.com/v1"
	DefaultTradierTimeout = 20 * time.Second
	DefaultMaxRetries     = 3

	DefaultMassiveBaseURL = "https://api.polygon.io"
	DefaultMassiveTimeout = 20 * time.Second

	// Tradier market data limits: 120/min production, 60/min sandbox.
	ProductionRateLimit = 120
	SandboxRateLimit    = 60
	DefaultRateWindow   = 60 * time.Second

	DefaultBatchSize       = 860
	DefaultRefreshInterval = 61 * time.Second
	DefaultMaxConcurrency  = 8
	DefaultStartupDelay    = 1 * time.Second
	DefaultFetchTimeout    = 30 * time.Second
)

func (c *ServerConfig) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = DefaultAllowOrigins
	}

	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}
	if c.Feed.RefreshSchedule == "" {
		c.Feed.RefreshSchedule = DefaultFeedRefreshSchedule
	}

	// Tradier defaults
	if c.Tradier.BaseURL == "" {
		c.Tradier.BaseURL = DefaultTradierBaseURL
	}
	if c.Tradier.Timeout == 0 {
		c.Tradier.Timeout = DefaultTradierTimeout
	}
	if c.Tradier.MaxRetries == 0 {
		c.Tradier.MaxRetries = DefaultMaxRetries
	}

	// Massive defaults (fallback vendor; stays disabled without a key)
	if c.Massive.BaseURL == "" {
		c.Massive.BaseURL = DefaultMassiveBaseURL
	}
	if c.Massive.Timeout == 0 {
		c.Massive.Timeout = DefaultMassiveTimeout
	}

	// Rate limit defaults: the ceiling tracks the deployment tier.
	if c.RateLimit.MaxRequests == 0 {
		if strings.Contains(strings.ToLower(c.Tradier.BaseURL), "sandbox") {
			c.RateLimit.MaxRequests = SandboxRateLimit
		} else {
			c.RateLimit.MaxRequests = ProductionRateLimit
		}
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateWindow
	}

	// Snapshot defaults
	if c.Snapshot.BatchSize == 0 {
		c.Snapshot.BatchSize = DefaultBatchSize
	}
	if c.Snapshot.Interval == 0 {
		c.Snapshot.Interval = DefaultRefreshInterval
	}
	if c.Snapshot.MaxConcurrency == 0 {
		c.Snapshot.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.Snapshot.StartupDelay == 0 {
		c.Snapshot.StartupDelay = DefaultStartupDelay
	}
	if c.Snapshot.FetchTimeout == 0 {
		c.Snapshot.FetchTimeout = DefaultFetchTimeout
	}
}
