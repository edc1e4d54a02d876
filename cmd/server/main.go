package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rootski/optionskit-backend/internal/config"
	"github.com/rootski/optionskit-backend/internal/massive"
	"github.com/rootski/optionskit-backend/internal/occfeed"
	"github.com/rootski/optionskit-backend/internal/ratelimit"
	"github.com/rootski/optionskit-backend/internal/server"
	"github.com/rootski/optionskit-backend/internal/snapshot"
	"github.com/rootski/optionskit-backend/internal/tradier"
	"github.com/rootski/optionskit-backend/internal/universe"
	"github.com/rootski/optionskit-backend/internal/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting server",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration; a missing file falls back to built-in defaults
	// so the server can run from environment variables alone.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		logger.Warn("config file not found, using defaults", "path", *configPath)
		cfg = config.Default()
	}
	if cfg.Tradier.Token == "" {
		cfg.Tradier.Token = os.Getenv("TRADIER_API_TOKEN")
	}
	if cfg.Massive.APIKey == "" {
		cfg.Massive.APIKey = os.Getenv("MASSIVE_API_KEY")
	}

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"tradier_base_url", cfg.Tradier.BaseURL,
		"ratelimit_max", cfg.RateLimit.MaxRequests,
		"token_set", cfg.Tradier.Token != "",
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Shared rate limiter, adjusted from vendor response headers.
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, logger)

	// Vendor clients
	feedClient := occfeed.NewClient(cfg.Feed.URL,
		occfeed.WithLogger(logger),
		occfeed.WithTimeout(cfg.Feed.Timeout),
	)
	tradierClient := tradier.NewClient(cfg.Tradier.BaseURL, cfg.Tradier.Token,
		tradier.WithLogger(logger),
		tradier.WithTimeout(cfg.Tradier.Timeout),
		tradier.WithRetries(cfg.Tradier.MaxRetries, time.Second),
		tradier.WithRateLimiter(limiter),
	)

	// Fallback chain vendor, active only when configured with a key.
	var chainFallback server.ChainFallback
	if cfg.Massive.Enabled() {
		chainFallback = massive.NewClient(cfg.Massive.BaseURL, cfg.Massive.APIKey,
			massive.WithLogger(logger),
			massive.WithTimeout(cfg.Massive.Timeout),
		)
		logger.Info("chain fallback vendor enabled", "base_url", cfg.Massive.BaseURL)
	}

	// Symbol universe with daily refresh
	registry := universe.NewRegistry(universe.Config{
		RefreshSchedule: cfg.Feed.RefreshSchedule,
		FetchTimeout:    cfg.Feed.Timeout,
	}, feedClient, logger)

	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start symbol registry", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		registry.Stop(stopCtx)
	}()

	// Snapshot store and background refresher
	store := snapshot.NewStore()
	refresher := snapshot.NewRefresher(snapshot.Config{
		StartupDelay:   cfg.Snapshot.StartupDelay,
		Interval:       cfg.Snapshot.Interval,
		BatchSize:      cfg.Snapshot.BatchSize,
		MaxConcurrency: cfg.Snapshot.MaxConcurrency,
		FetchTimeout:   cfg.Snapshot.FetchTimeout,
	}, registry, tradierClient, store, logger)

	if err := refresher.Start(ctx); err != nil {
		logger.Error("failed to start snapshot refresher", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		refresher.Stop(stopCtx)
	}()

	// HTTP API
	srv := server.New(cfg.Server, registry, store, refresher, tradierClient, chainFallback, limiter, cfg.Tradier.Token != "", logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	logger.Info("server running",
		"port", cfg.Server.Port,
		"symbols", registry.SymbolCount(),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
