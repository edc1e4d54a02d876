package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rootski/optionskit-backend/internal/config"
	"github.com/rootski/optionskit-backend/internal/model"
	"github.com/rootski/optionskit-backend/internal/ratelimit"
	"github.com/rootski/optionskit-backend/internal/snapshot"
	"github.com/rootski/optionskit-backend/internal/universe"
)

// OptionsProvider is the vendor surface the pass-through endpoints need.
type OptionsProvider interface {
	GetOptionChain(ctx context.Context, symbol, expiry string) (*model.OptionChain, error)
	GetExpirations(ctx context.Context, symbol string) ([]model.ExpirationData, error)
}

// ChainFallback is the secondary chain vendor, consulted only after the
// primary fails. Nil disables the fallback.
type ChainFallback interface {
	GetOptionChain(ctx context.Context, symbol, expiry string) (*model.OptionChain, error)
}

// StatusReporter reports background refresh task state.
type StatusReporter interface {
	Status() snapshot.TaskStatus
}

// Server serves the HTTP API. Construct with New, then either mount
// Handler on an existing mux or drive the lifecycle with Start/Stop.
type Server struct {
	cfg       config.HTTPConfig
	universe  universe.Registry
	store     *snapshot.Store
	task      StatusReporter
	options   OptionsProvider
	fallback  ChainFallback
	limiter   *ratelimit.Limiter
	tokenSet  bool
	logger    *slog.Logger
	handler   http.Handler
	httpServe *http.Server
}

// New assembles the router and middleware. Any dependency may be nil in
// tests; the matching endpoints then return 503.
func New(cfg config.HTTPConfig, reg universe.Registry, store *snapshot.Store, task StatusReporter, options OptionsProvider, fallback ChainFallback, limiter *ratelimit.Limiter, tokenSet bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		universe: reg,
		store:    store,
		task:     task,
		options:  options,
		fallback: fallback,
		limiter:  limiter,
		tokenSet: tokenSet,
		logger:   logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/healthz/secrets", s.handleSecrets).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1/markets").Subrouter()
	v1.HandleFunc("/options/symbols", s.handleSymbols).Methods(http.MethodGet)
	v1.HandleFunc("/options/symbols/refresh", s.handleSymbolsRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/options/expirations", s.handleExpirations).Methods(http.MethodGet)
	v1.HandleFunc("/quotes/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/quotes/last_update", s.handleLastUpdate).Methods(http.MethodGet)
	v1.HandleFunc("/quotes/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/chain", s.handleChain).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(cfg.AllowOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	s.handler = c.Handler(s.logRequests(r))
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving on the configured port. It returns once the
// listener goroutine is running; serve errors other than a clean close
// are logged.
func (s *Server) Start(ctx context.Context) error {
	s.httpServe = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.Info("http server starting", "addr", s.httpServe.Addr)
	go func() {
		if err := s.httpServe.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server exited", "error", err)
		}
	}()
	return nil
}

// Stop shuts the listener down, letting in-flight requests drain until
// ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServe == nil {
		return nil
	}
	s.logger.Info("http server stopping")
	return s.httpServe.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
