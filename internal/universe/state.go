package universe

import (
	"sort"
	"sync"
	"time"
)

// state holds the current symbol set under a single-writer/many-reader
// discipline. Writers replace the whole set; readers copy out.
type state struct {
	mu         sync.RWMutex
	symbols    map[string]struct{}
	lastUpdate time.Time
	updated    bool
}

func newState() *state {
	return &state{
		symbols: make(map[string]struct{}),
	}
}

// replace swaps in a new symbol set. The map must not be mutated by the
// caller afterwards.
func (s *state) replace(symbols map[string]struct{}, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = symbols
	s.lastUpdate = t
	s.updated = true
}

func (s *state) symbolSet() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.symbols))
	for sym := range s.symbols {
		out[sym] = struct{}{}
	}
	return out
}

func (s *state) sortedSymbols() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

func (s *state) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symbols)
}

func (s *state) last() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate, s.updated
}

func (s *state) contains(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.symbols[symbol]
	return ok
}
