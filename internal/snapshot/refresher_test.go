package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rootski/optionskit-backend/internal/model"
)

// mockUniverse returns a fixed sorted symbol list.
type mockUniverse struct {
	symbols []string
}

func (m *mockUniverse) Symbols() []string {
	return m.symbols
}

// mockFetcher returns a canned quote per symbol, failing any batch that
// contains a symbol in failOn.
type mockFetcher struct {
	failOn map[string]bool

	mu    sync.Mutex
	calls [][]string
}

func (m *mockFetcher) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbols)
	m.mu.Unlock()

	for _, s := range symbols {
		if m.failOn[s] {
			return nil, errors.New("vendor unavailable")
		}
	}

	quotes := make([]model.Quote, 0, len(symbols))
	for _, s := range symbols {
		quotes = append(quotes, model.Quote{
			Symbol:      s,
			Description: s + " Inc",
			Last:        100,
			Bid:         99.5,
			Ask:         100.5,
			Volume:      1000,
			Exchange:    "Q",
			Change:      1.5,
		})
	}
	return quotes, nil
}

func TestChunkSymbols(t *testing.T) {
	symbols := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}

	batches := chunkSymbols(symbols, 3)

	if len(batches) != 4 {
		t.Fatalf("len(batches) = %d, want 4", len(batches))
	}
	for i := 0; i < 3; i++ {
		if len(batches[i]) != 3 {
			t.Errorf("len(batches[%d]) = %d, want 3", i, len(batches[i]))
		}
	}
	if len(batches[3]) != 1 || batches[3][0] != "s9" {
		t.Errorf("batches[3] = %v, want [s9]", batches[3])
	}
}

func TestChunkSymbols_ExactMultiple(t *testing.T) {
	batches := chunkSymbols([]string{"a", "b", "c", "d"}, 2)
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 2 {
		t.Errorf("batches = %v, want two full batches", batches)
	}
}

func TestChunkSymbols_Empty(t *testing.T) {
	if batches := chunkSymbols(nil, 3); batches != nil {
		t.Errorf("batches = %v, want nil", batches)
	}
}

func newTestRefresher(cfg Config, universe UniverseSource, fetcher QuoteFetcher) (*Refresher, *Store) {
	store := NewStore()
	r := NewRefresher(cfg, universe, fetcher, store, nil)
	r.ctx = context.Background()
	return r, store
}

func TestRefresher_RefreshOnce(t *testing.T) {
	universe := &mockUniverse{symbols: []string{"AAPL", "MSFT"}}
	fetcher := &mockFetcher{}
	r, store := newTestRefresher(Config{BatchSize: 10}, universe, fetcher)

	if err := r.refreshOnce("test"); err != nil {
		t.Fatalf("refreshOnce failed: %v", err)
	}

	view := store.Get(nil)
	if view.Count != 2 {
		t.Fatalf("Count = %d, want 2", view.Count)
	}
	if view.LastUpdate == nil {
		t.Fatal("LastUpdate should be set")
	}

	// Stored quotes are projected to the six core fields.
	for _, q := range view.Results {
		if q.Exchange != "" || q.Change != 0 {
			t.Errorf("quote %s kept vendor extras: %+v", q.Symbol, q)
		}
		if q.Description == "" || q.Last == 0 {
			t.Errorf("quote %s missing core fields: %+v", q.Symbol, q)
		}
	}
}

func TestRefresher_EmptyUniverse(t *testing.T) {
	universe := &mockUniverse{}
	fetcher := &mockFetcher{}
	r, store := newTestRefresher(Config{}, universe, fetcher)

	err := r.refreshOnce("test")
	if !errors.Is(err, ErrEmptyUniverse) {
		t.Fatalf("err = %v, want ErrEmptyUniverse", err)
	}

	if len(fetcher.calls) != 0 {
		t.Error("vendor must not be called with an empty universe")
	}
	if _, count := store.LastUpdateMeta(); count != 0 {
		t.Error("store must stay empty after an aborted cycle")
	}
}

func TestRefresher_PartialBatchFailure(t *testing.T) {
	// AAPL and MSFT land in separate batches; the MSFT batch fails.
	universe := &mockUniverse{symbols: []string{"AAPL", "MSFT"}}
	fetcher := &mockFetcher{failOn: map[string]bool{"MSFT": true}}
	r, store := newTestRefresher(Config{BatchSize: 1}, universe, fetcher)

	// At least one quote obtained: the cycle still publishes.
	if err := r.refreshOnce("test"); err != nil {
		t.Fatalf("refreshOnce failed: %v", err)
	}

	view := store.Get(nil)
	if view.Count != 1 {
		t.Fatalf("Count = %d, want 1", view.Count)
	}
	if view.Results[0].Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", view.Results[0].Symbol)
	}
}

func TestRefresher_AllBatchesFailPreservesSnapshot(t *testing.T) {
	universe := &mockUniverse{symbols: []string{"AAPL", "MSFT"}}
	fetcher := &mockFetcher{}
	r, store := newTestRefresher(Config{BatchSize: 1}, universe, fetcher)

	if err := r.refreshOnce("seed"); err != nil {
		t.Fatalf("seed cycle failed: %v", err)
	}
	before := store.Get(nil)

	fetcher.failOn = map[string]bool{"AAPL": true, "MSFT": true}
	err := r.refreshOnce("fail")
	if !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("err = %v, want ErrNoQuotes", err)
	}

	after := store.Get(nil)
	if after.Count != before.Count {
		t.Errorf("Count changed: %d -> %d", before.Count, after.Count)
	}
	if !after.LastUpdate.Equal(*before.LastUpdate) {
		t.Errorf("LastUpdate changed: %v -> %v", before.LastUpdate, after.LastUpdate)
	}
	for i := range before.Results {
		if after.Results[i] != before.Results[i] {
			t.Errorf("Results[%d] changed: %+v -> %+v", i, before.Results[i], after.Results[i])
		}
	}
}

func TestRefresher_AggregatesInBatchOrder(t *testing.T) {
	universe := &mockUniverse{symbols: []string{"A", "B", "C", "D", "E"}}
	fetcher := &mockFetcher{}
	r, store := newTestRefresher(Config{BatchSize: 2, MaxConcurrency: 4}, universe, fetcher)

	if err := r.refreshOnce("test"); err != nil {
		t.Fatalf("refreshOnce failed: %v", err)
	}

	view := store.Get(nil)
	want := []string{"A", "B", "C", "D", "E"}
	if view.Count != len(want) {
		t.Fatalf("Count = %d, want %d", view.Count, len(want))
	}
	for i, sym := range want {
		if view.Results[i].Symbol != sym {
			t.Errorf("Results[%d] = %q, want %q", i, view.Results[i].Symbol, sym)
		}
	}
}

// countingFetcher tracks the maximum number of concurrent GetQuotes calls.
type countingFetcher struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *countingFetcher) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		old := f.maxInFlight.Load()
		if current <= old || f.maxInFlight.CompareAndSwap(old, current) {
			break
		}
	}

	time.Sleep(20 * time.Millisecond)

	quotes := make([]model.Quote, 0, len(symbols))
	for _, s := range symbols {
		quotes = append(quotes, model.Quote{Symbol: s, Last: 1})
	}
	return quotes, nil
}

func TestRefresher_ConcurrencyCap(t *testing.T) {
	symbols := make([]string, 20)
	for i := range symbols {
		symbols[i] = "S" + string(rune('A'+i))
	}
	universe := &mockUniverse{symbols: symbols}
	fetcher := &countingFetcher{}
	r, _ := newTestRefresher(Config{BatchSize: 1, MaxConcurrency: 3}, universe, fetcher)

	if err := r.refreshOnce("test"); err != nil {
		t.Fatalf("refreshOnce failed: %v", err)
	}

	if got := fetcher.maxInFlight.Load(); got > 3 {
		t.Errorf("maxInFlight = %d, want <= 3", got)
	}
}

func TestRefresher_StartStop(t *testing.T) {
	universe := &mockUniverse{symbols: []string{"AAPL"}}
	fetcher := &mockFetcher{}
	store := NewStore()

	cfg := Config{
		StartupDelay: 10 * time.Millisecond,
		Interval:     50 * time.Millisecond,
		BatchSize:    10,
	}
	r := NewRefresher(cfg, universe, fetcher, store, nil)

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Start while running is a warned no-op.
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second Start should be a no-op, got %v", err)
	}

	// Wait for the immediate first cycle.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, count := store.LastUpdateMeta(); count > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for first cycle to publish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if status := r.Status(); !status.Running {
		t.Error("Status.Running = false, want true")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	status := r.Status()
	if status.Running {
		t.Error("Status.Running = true after Stop")
	}
	if status.Cycles < 1 {
		t.Errorf("Cycles = %d, want >= 1", status.Cycles)
	}
	if status.LastSuccess == nil {
		t.Error("LastSuccess should be set after a successful cycle")
	}

	// Stop while stopped is a no-op.
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop should be a no-op, got %v", err)
	}
}

// blockingFetcher parks inside GetQuotes until released, ignoring ctx.
type blockingFetcher struct {
	entered chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	f.entered <- struct{}{}
	<-f.release
	return []model.Quote{{Symbol: symbols[0], Last: 1}}, nil
}

func TestRefresher_StopTimeoutKeepsRunningUntilDrained(t *testing.T) {
	universe := &mockUniverse{symbols: []string{"AAPL"}}
	fetcher := &blockingFetcher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewStore()

	cfg := Config{
		StartupDelay: 5 * time.Millisecond,
		Interval:     time.Hour,
		BatchSize:    10,
	}
	r := NewRefresher(cfg, universe, fetcher, store, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait until a cycle is parked inside the fetcher.
	select {
	case <-fetcher.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cycle to enter fetcher")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Stop(stopCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop with parked cycle = %v, want deadline exceeded", err)
	}

	// The loop goroutine is still draining, so the refresher must still
	// report running and a new Start must not spin up a second loop.
	if !r.Status().Running {
		t.Error("Status.Running = false while loop goroutine is draining")
	}
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start while draining should be a warned no-op, got %v", err)
	}
	select {
	case <-fetcher.entered:
		t.Fatal("a second loop entered the fetcher; Start reused a draining refresher")
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.release)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer drainCancel()
	if err := r.Stop(drainCtx); err != nil {
		t.Fatalf("retried Stop failed: %v", err)
	}
	if r.Status().Running {
		t.Error("Status.Running = true after drained Stop")
	}
}
