package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rootski/optionskit-backend/internal/model"
	"github.com/rootski/optionskit-backend/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func timeOrNil(t time.Time, ok bool) *string {
	if !ok {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"tradier_token_set": s.tokenSet})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	var symbolsUpdated *string
	if s.universe != nil {
		if last, ok := s.universe.LastUpdate(); ok {
			v := last.UTC().Format(time.RFC3339)
			symbolsUpdated = &v
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":                 info.Version,
		"commit":                  info.Commit,
		"build_time":              info.BuildTime,
		"occ_symbols_last_update": symbolsUpdated,
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if s.universe == nil {
		writeError(w, http.StatusServiceUnavailable, "symbol registry not configured")
		return
	}
	symbols := s.universe.Symbols()
	last, ok := s.universe.LastUpdate()
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols":     symbols,
		"count":       len(symbols),
		"last_update": timeOrNil(last, ok),
	})
}

func (s *Server) handleSymbolsRefresh(w http.ResponseWriter, r *http.Request) {
	if s.universe == nil {
		writeError(w, http.StatusServiceUnavailable, "symbol registry not configured")
		return
	}
	if err := s.universe.Refresh(r.Context()); err != nil {
		s.logger.Error("manual symbol refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, "symbol refresh failed: "+err.Error())
		return
	}
	last, ok := s.universe.LastUpdate()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"count":       s.universe.SymbolCount(),
		"last_update": timeOrNil(last, ok),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot store not configured")
		return
	}
	var filter []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				filter = append(filter, strings.ToUpper(p))
			}
		}
	}
	writeJSON(w, http.StatusOK, s.store.Get(filter))
}

func (s *Server) handleLastUpdate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot store not configured")
		return
	}
	last, count := s.store.LastUpdateMeta()
	var stamp *string
	if last != nil {
		v := last.UTC().Format(time.RFC3339)
		stamp = &v
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_update": stamp,
		"count":       count,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{}
	if s.task != nil {
		resp["task"] = s.task.Status()
	}
	if s.limiter != nil {
		resp["ratelimit"] = s.limiter.Stats()
	}
	if s.universe != nil {
		resp["symbol_count"] = s.universe.SymbolCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	if s.options == nil {
		writeError(w, http.StatusServiceUnavailable, "options provider not configured")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	expiry := strings.TrimSpace(r.URL.Query().Get("expiry"))
	if symbol == "" || expiry == "" {
		writeError(w, http.StatusBadRequest, "symbol and expiry query parameters are required")
		return
	}
	chain, primaryErr := s.options.GetOptionChain(r.Context(), symbol, expiry)
	if primaryErr == nil {
		writeJSON(w, http.StatusOK, chain)
		return
	}
	s.logger.Warn("primary chain vendor failed", "symbol", symbol, "expiry", expiry, "error", primaryErr)

	if s.fallback != nil {
		chain, fallbackErr := s.fallback.GetOptionChain(r.Context(), symbol, expiry)
		if fallbackErr == nil {
			s.logger.Info("served chain from fallback vendor", "symbol", symbol, "expiry", expiry)
			writeJSON(w, http.StatusOK, chain)
			return
		}
		s.logger.Error("both chain vendors failed",
			"symbol", symbol,
			"expiry", expiry,
			"primary_error", primaryErr,
			"fallback_error", fallbackErr,
		)
		writeError(w, http.StatusBadGateway, "option chain fetch failed: primary and fallback vendors unavailable")
		return
	}

	s.logger.Error("option chain fetch failed", "symbol", symbol, "expiry", expiry, "error", primaryErr)
	writeError(w, http.StatusBadGateway, "option chain fetch failed")
}

func (s *Server) handleExpirations(w http.ResponseWriter, r *http.Request) {
	if s.options == nil {
		writeError(w, http.StatusServiceUnavailable, "options provider not configured")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}
	data, err := s.options.GetExpirations(r.Context(), symbol)
	if err != nil {
		s.logger.Error("expirations fetch failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, "expirations fetch failed")
		return
	}
	dates := make([]string, 0, len(data))
	for _, d := range data {
		dates = append(dates, d.Date)
	}
	if data == nil {
		data = []model.ExpirationData{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":          symbol,
		"expirations":     dates,
		"expiration_data": data,
	})
}
