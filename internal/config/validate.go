package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all values are in range. Call after defaults are
// applied.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if c.Feed.Timeout < time.Second {
		return errors.New("feed.timeout must be >= 1s")
	}
	if c.Feed.RefreshSchedule == "" {
		return errors.New("feed.refresh_schedule is required")
	}

	if c.Tradier.BaseURL == "" {
		return errors.New("tradier.base_url is required")
	}
	if c.Tradier.MaxRetries < 0 {
		return errors.New("tradier.max_retries must be >= 0")
	}

	if c.RateLimit.MaxRequests < 1 {
		return errors.New("ratelimit.max_requests must be >= 1")
	}
	if c.RateLimit.Window < time.Second {
		return errors.New("ratelimit.window must be >= 1s")
	}

	if c.Snapshot.BatchSize < 1 {
		return errors.New("snapshot.batch_size must be >= 1")
	}
	if c.Snapshot.MaxConcurrency < 1 {
		return errors.New("snapshot.max_concurrency must be >= 1")
	}
	if c.Snapshot.Interval < time.Second {
		return errors.New("snapshot.interval must be >= 1s")
	}

	return nil
}
