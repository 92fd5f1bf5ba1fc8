package pl

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/checks"
	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/pkg/executil"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memCache is an in-memory SnapshotCache with call counters.
type memCache struct {
	mu      sync.Mutex
	snap    todo.Snapshot
	has     bool
	saves   int
	clears  int
	saveErr error
}

func (c *memCache) Load() (todo.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return todo.Snapshot{}, nil
	}
	return todo.Snapshot{Timestamp: c.snap.Timestamp, Items: append([]todo.Item(nil), c.snap.Items...)}, nil
}

func (c *memCache) Save(snap todo.Snapshot, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.snap = snap
	c.has = true
	return nil
}

func (c *memCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
	c.snap = todo.Snapshot{}
	c.has = false
	return nil
}

func (c *memCache) Saved() (todo.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.has
}

// fakeProvider returns a fixed item list and counts invocations.
type fakeProvider struct {
	cat   todo.Category
	items []todo.Item
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (p *fakeProvider) Category() todo.Category { return p.cat }

func (p *fakeProvider) Check(ctx context.Context, _ checks.Env) ([]todo.Item, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return append([]todo.Item(nil), p.items...), p.err
}

func (p *fakeProvider) Calls() int { return int(p.calls.Load()) }

func item(id string, prio todo.Priority, title string) todo.Item {
	cat, _, err := todo.ParseID(id)
	if err != nil {
		panic(err)
	}
	return todo.Item{ID: id, Category: cat, Priority: prio, Title: title}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Todo.CacheTTL = 300 * time.Second
	return &cfg
}

type harness struct {
	cfg      *config.Config
	clock    *clock
	cache    *memCache
	store    *confstore.Memory
	registry *Registry
	ignores  *IgnoreService
	agg      *Aggregator
}

func newHarness(t *testing.T, cfg *config.Config, providers ...checks.Provider) *harness {
	t.Helper()

	store, err := confstore.NewMemory("")
	require.NoError(t, err)

	h := &harness{
		cfg:   cfg,
		clock: newClock(t0),
		cache: &memCache{},
		store: store,
	}

	h.registry = NewRegistry(cfg, h.cache, &executil.RecordingExecutor{}, providers)
	h.registry.now = h.clock.Now

	h.ignores = NewIgnoreService(store)
	h.ignores.now = h.clock.Now

	h.agg = NewAggregator(h.registry, h.ignores)
	return h
}

func itemIDs(items []todo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func viewIDs(v todo.View) []string {
	out := make([]string, len(v.Items))
	for i, it := range v.Items {
		out[i] = it.ID
	}
	return out
}
