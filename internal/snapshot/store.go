package snapshot

import (
	"strings"
	"sync"
	"time"

	"github.com/rootski/optionskit-backend/internal/model"
)

// View is the serializable read model of the snapshot.
type View struct {
	LastUpdate *time.Time    `json:"last_update"`
	Count      int           `json:"count"`
	Results    []model.Quote `json:"results"`
}

// published is one immutable snapshot generation. Once installed it is
// never mutated, so readers only need the pointer.
type published struct {
	lastUpdate time.Time
	results    []model.Quote
	bySymbol   map[string]model.Quote
}

// Store holds the current snapshot and swaps it wholesale on publish.
type Store struct {
	mu      sync.RWMutex
	current *published
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the snapshot with a new generation built from quotes.
// Duplicate symbols collapse last-write-wins, keeping the position of the
// first occurrence, so the result list and the index stay the same size.
func (s *Store) Publish(quotes []model.Quote, t time.Time) {
	results := make([]model.Quote, 0, len(quotes))
	bySymbol := make(map[string]model.Quote, len(quotes))
	position := make(map[string]int, len(quotes))

	for _, q := range quotes {
		if i, seen := position[q.Symbol]; seen {
			results[i] = q
		} else {
			position[q.Symbol] = len(results)
			results = append(results, q)
		}
		bySymbol[q.Symbol] = q
	}

	next := &published{
		lastUpdate: t,
		results:    results,
		bySymbol:   bySymbol,
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// Get returns the current snapshot, filtered to the requested symbols
// when any are given. Unknown symbols are silently excluded; lookups are
// case-insensitive.
func (s *Store) Get(symbols []string) View {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		return View{Results: []model.Quote{}}
	}

	t := cur.lastUpdate
	if len(symbols) == 0 {
		results := make([]model.Quote, len(cur.results))
		copy(results, cur.results)
		return View{
			LastUpdate: &t,
			Count:      len(results),
			Results:    results,
		}
	}

	results := make([]model.Quote, 0, len(symbols))
	for _, sym := range symbols {
		if q, ok := cur.bySymbol[strings.ToUpper(sym)]; ok {
			results = append(results, q)
		}
	}
	return View{
		LastUpdate: &t,
		Count:      len(results),
		Results:    results,
	}
}

// LastUpdateMeta returns the publish time and record count without
// copying the results.
func (s *Store) LastUpdateMeta() (*time.Time, int) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		return nil, 0
	}
	t := cur.lastUpdate
	return &t, len(cur.results)
}
