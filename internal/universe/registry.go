package universe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rootski/optionskit-backend/internal/occfeed"
)

// ErrNoSymbols is returned when a feed download parses to zero accepted
// symbols. By policy this counts as a failed refresh: the previous set is
// kept rather than replaced with an empty universe.
var ErrNoSymbols = errors.New("feed parsed to zero symbols")

// Config holds symbol universe registry configuration.
type Config struct {
	RefreshSchedule string        // Cron spec for the daily refresh (default: "10 0 * * *")
	FetchTimeout    time.Duration // Per-download timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RefreshSchedule: "10 0 * * *",
		FetchTimeout:    30 * time.Second,
	}
}

// FeedSource downloads the raw symbol directory body.
type FeedSource interface {
	Fetch(ctx context.Context) (string, error)
}

// Registry maintains the current symbol universe.
type Registry interface {
	// Start performs an initial refresh and schedules the daily one.
	// An initial refresh failure is logged, not returned: the schedule
	// and the manual trigger can recover later.
	Start(ctx context.Context) error

	// Stop cancels the schedule and waits for an in-flight run.
	Stop(ctx context.Context) error

	// Refresh downloads and replaces the symbol set. On any failure the
	// previous set is preserved and the error is returned (manual
	// trigger path).
	Refresh(ctx context.Context) error

	// Symbols returns a sorted copy of the current set.
	Symbols() []string

	// SymbolSet returns a copy of the current set.
	SymbolSet() map[string]struct{}

	// SymbolCount returns the size of the current set.
	SymbolCount() int

	// LastUpdate returns the time of the last successful refresh.
	LastUpdate() (time.Time, bool)

	// IsAvailable reports whether a symbol is in the set (case-insensitive).
	IsAvailable(symbol string) bool
}

// registryImpl implements Registry.
type registryImpl struct {
	cfg    Config
	feed   FeedSource
	logger *slog.Logger

	state *state
	cron  *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates a symbol universe registry.
func NewRegistry(cfg Config, feed FeedSource, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = DefaultConfig().RefreshSchedule
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}

	return &registryImpl{
		cfg:    cfg,
		feed:   feed,
		logger: logger,
		state:  newState(),
		cron:   cron.New(),
	}
}

// Start refreshes once (best effort) and starts the daily schedule.
func (r *registryImpl) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if err := r.Refresh(r.ctx); err != nil {
		r.logger.Error("initial symbol refresh failed, starting with empty universe",
			"err", err,
		)
	}

	if _, err := r.cron.AddFunc(r.cfg.RefreshSchedule, r.scheduledRefresh); err != nil {
		r.cancel()
		return fmt.Errorf("schedule symbol refresh: %w", err)
	}
	r.cron.Start()

	r.logger.Info("symbol universe registry started",
		"symbols", r.state.count(),
		"schedule", r.cfg.RefreshSchedule,
	)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *registryImpl) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
		r.logger.Info("symbol universe registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scheduledRefresh runs the daily refresh; failures are absorbed.
func (r *registryImpl) scheduledRefresh() {
	if err := r.Refresh(r.ctx); err != nil {
		r.logger.Error("scheduled symbol refresh failed, keeping previous universe",
			"err", err,
			"symbols", r.state.count(),
		)
	}
}

// Refresh downloads, parses and replaces the symbol set.
func (r *registryImpl) Refresh(ctx context.Context) error {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	body, err := r.feed.Fetch(fetchCtx)
	if err != nil {
		return fmt.Errorf("fetch symbol feed: %w", err)
	}

	symbols := occfeed.ParseSymbols(body, r.logger)
	if len(symbols) == 0 {
		return ErrNoSymbols
	}

	r.state.replace(symbols, time.Now())

	r.logger.Info("symbol universe refreshed",
		"symbols", len(symbols),
		"duration", time.Since(start),
	)
	return nil
}

func (r *registryImpl) Symbols() []string {
	return r.state.sortedSymbols()
}

func (r *registryImpl) SymbolSet() map[string]struct{} {
	return r.state.symbolSet()
}

func (r *registryImpl) SymbolCount() int {
	return r.state.count()
}

func (r *registryImpl) LastUpdate() (time.Time, bool) {
	return r.state.last()
}

func (r *registryImpl) IsAvailable(symbol string) bool {
	return r.state.contains(strings.ToUpper(symbol))
}
