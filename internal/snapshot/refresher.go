package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rootski/optionskit-backend/internal/model"
)

// Cycle failure reasons, used for logging policy only: neither error
// reaches snapshot readers.
var (
	// ErrEmptyUniverse means there were no symbols to refresh against.
	ErrEmptyUniverse = errors.New("symbol universe is empty")

	// ErrNoQuotes means every batch came back empty or failed.
	ErrNoQuotes = errors.New("cycle produced no quotes")
)

// UniverseSource provides the current symbol universe, sorted.
type UniverseSource interface {
	Symbols() []string
}

// QuoteFetcher fetches quotes for one batch of symbols.
type QuoteFetcher interface {
	GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error)
}

// Config holds refresher configuration.
type Config struct {
	StartupDelay   time.Duration // Delay before the first cycle (default: 1s)
	Interval       time.Duration // Cycle cadence (default: 61s)
	BatchSize      int           // Max symbols per vendor call (default: 860)
	MaxConcurrency int           // Max batches in flight (default: 8)
	FetchTimeout   time.Duration // Per-batch timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		StartupDelay:   time.Second,
		Interval:       61 * time.Second,
		BatchSize:      860,
		MaxConcurrency: 8,
		FetchTimeout:   30 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.StartupDelay <= 0 {
		c.StartupDelay = def.StartupDelay
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = def.MaxConcurrency
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
}

// TaskStatus is a diagnostic view of the background task.
type TaskStatus struct {
	Running     bool       `json:"running"`
	Cycles      int64      `json:"cycles"`
	Failures    int64      `json:"failures"`
	LastCycle   *time.Time `json:"last_cycle"`
	LastSuccess *time.Time `json:"last_success"`
}

// Refresher periodically rebuilds the quotes snapshot.
type Refresher struct {
	cfg      Config
	universe UniverseSource
	fetcher  QuoteFetcher
	store    *Store
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	cycles      atomic.Int64
	failures    atomic.Int64
	timesMu     sync.Mutex
	lastCycle   time.Time
	lastSuccess time.Time
}

// NewRefresher creates a Refresher publishing into store.
func NewRefresher(cfg Config, universe UniverseSource, fetcher QuoteFetcher, store *Store, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Refresher{
		cfg:      cfg,
		universe: universe,
		fetcher:  fetcher,
		store:    store,
		logger:   logger,
	}
}

// Start launches the background refresh loop. Calling Start while the
// loop is already running is a no-op with a warning.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		r.logger.Warn("snapshot refresher already running")
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.running = true

	r.wg.Add(1)
	go r.run()

	r.logger.Info("snapshot refresher started",
		"interval", r.cfg.Interval,
		"batch_size", r.cfg.BatchSize,
		"max_concurrency", r.cfg.MaxConcurrency,
	)
	return nil
}

// Stop cancels the loop and waits for it to exit. Stopping a refresher
// that is not running is a no-op.
//
// running stays true until the loop goroutine has actually exited, so a
// Start racing a timed-out Stop cannot reuse the WaitGroup or replace
// the context under a live goroutine. A timed-out Stop may be retried.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		r.logger.Info("snapshot refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a diagnostic view of the background task.
func (r *Refresher) Status() TaskStatus {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()

	status := TaskStatus{
		Running:  running,
		Cycles:   r.cycles.Load(),
		Failures: r.failures.Load(),
	}

	r.timesMu.Lock()
	if !r.lastCycle.IsZero() {
		t := r.lastCycle
		status.LastCycle = &t
	}
	if !r.lastSuccess.IsZero() {
		t := r.lastSuccess
		status.LastSuccess = &t
	}
	r.timesMu.Unlock()

	return status
}

// run is the background refresh loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	// Let the symbol universe populate first.
	select {
	case <-r.ctx.Done():
		return
	case <-time.After(r.cfg.StartupDelay):
	}

	r.runCycle()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runCycle()
		}
	}
}

// runCycle executes one refresh cycle and records its outcome. A cycle
// failure never terminates the loop.
func (r *Refresher) runCycle() {
	defer func() {
		if p := recover(); p != nil {
			r.failures.Add(1)
			r.logger.Error("refresh cycle panicked", "panic", p)
		}
	}()

	cycleID := uuid.NewString()[:8]
	start := time.Now()

	r.cycles.Add(1)
	r.timesMu.Lock()
	r.lastCycle = start
	r.timesMu.Unlock()

	err := r.refreshOnce(cycleID)
	switch {
	case errors.Is(err, ErrEmptyUniverse):
		r.failures.Add(1)
		r.logger.Warn("no symbols available for snapshot refresh",
			"cycle", cycleID,
		)
	case err != nil:
		r.failures.Add(1)
		r.logger.Error("snapshot refresh failed, keeping previous snapshot",
			"cycle", cycleID,
			"err", err,
			"duration", time.Since(start),
		)
	default:
		r.timesMu.Lock()
		r.lastSuccess = time.Now()
		r.timesMu.Unlock()
	}
}

// refreshOnce runs one full fetch-aggregate-publish pass.
func (r *Refresher) refreshOnce(cycleID string) error {
	symbols := r.universe.Symbols()
	if len(symbols) == 0 {
		return ErrEmptyUniverse
	}

	batches := chunkSymbols(symbols, r.cfg.BatchSize)

	r.logger.Info("starting snapshot refresh",
		"cycle", cycleID,
		"symbols", len(symbols),
		"batches", len(batches),
	)

	start := time.Now()
	results := make([][]model.Quote, len(batches))
	var failedBatches atomic.Int32

	g, ctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.cfg.MaxConcurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
			defer cancel()

			quotes, err := r.fetcher.GetQuotes(fetchCtx, batch)
			if err != nil {
				// Absorbed: one bad batch must not discard the others.
				failedBatches.Add(1)
				r.logger.Warn("batch fetch failed",
					"cycle", cycleID,
					"batch", i+1,
					"batches", len(batches),
					"symbols", len(batch),
					"err", err,
				)
				return nil
			}

			results[i] = quotes
			return nil
		})
	}
	g.Wait()

	// Aggregate in batch order, trimming to the snapshot fields.
	var all []model.Quote
	for _, quotes := range results {
		for _, q := range quotes {
			all = append(all, q.Core())
		}
	}

	if len(all) == 0 {
		return ErrNoQuotes
	}

	r.store.Publish(all, time.Now())

	r.logger.Info("snapshot published",
		"cycle", cycleID,
		"quotes", len(all),
		"symbols_requested", len(symbols),
		"failed_batches", failedBatches.Load(),
		"duration", time.Since(start),
	)
	return nil
}

// chunkSymbols partitions symbols into contiguous batches of at most
// size; the final batch may be smaller.
func chunkSymbols(symbols []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(symbols); i += size {
		end := i + size
		if end > len(symbols) {
			end = len(symbols)
		}
		batches = append(batches, symbols[i:end])
	}
	return batches
}
