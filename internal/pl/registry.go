package pl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/pl/internal/core/checks"
	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/logging"
	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/pkg/executil"
)

// SnapshotCache stores the most recent aggregation snapshot.
type SnapshotCache interface {
	Load() (todo.Snapshot, error)
	Save(snap todo.Snapshot, runID string) error
	Clear() error
}

// RunStats describes the most recent RunAll call.
type RunStats struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	// Cached is set when the snapshot came from the cache and no provider ran.
	Cached    bool
	Disabled  bool
	Providers []checks.Stat
}

// Failed returns the stats of providers that errored or timed out.
func (s RunStats) Failed() []checks.Stat {
	var out []checks.Stat
	for _, p := range s.Providers {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Registry runs the enabled check providers and maintains the snapshot cache.
type Registry struct {
	config    *config.Config
	cache     SnapshotCache
	exec      executil.Executor
	providers []checks.Provider
	log       zerolog.Logger

	now  func() time.Time
	http *http.Client

	mu   sync.Mutex
	last RunStats
}

// NewRegistry creates a registry over providers. Providers are always
// merged in category enumeration order, whatever order they are given in.
func NewRegistry(cfg *config.Config, cache SnapshotCache, exec executil.Executor, providers []checks.Provider) *Registry {
	sorted := append([]checks.Provider(nil), providers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Category().Rank() < sorted[j].Category().Rank()
	})

	return &Registry{
		config:    cfg,
		cache:     cache,
		exec:      exec,
		providers: sorted,
		log:       logging.Component("registry"),
		now:       time.Now,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// LastRun returns the stats of the most recent RunAll.
func (r *Registry) LastRun() RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Enabled returns the providers whose category toggle is on.
func (r *Registry) Enabled() []checks.Provider {
	var out []checks.Provider
	for _, p := range r.providers {
		if r.config.Todo.Categories.Enabled(p.Category().Toggle()) {
			out = append(out, p)
		}
	}
	return out
}

// ClearCache drops the cached snapshot so the next run is fresh.
func (r *Registry) ClearCache() error {
	return r.cache.Clear()
}

// RunAll returns the current item list. The enabled flag is checked
// first: with todo disabled it returns an empty snapshot without reading
// the cache or running any provider. Otherwise, unless force is set, a
// snapshot younger than cache_ttl is served without invoking any provider.
//
// Provider failures, panics and timeouts only drop that provider's findings.
// The only error returned is cancellation of ctx, in which case the cache
// is left untouched.
func (r *Registry) RunAll(ctx context.Context, force bool) (todo.Snapshot, error) {
	started := r.now().UTC()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	stats := RunStats{RunID: runID, StartedAt: started}
	defer func() {
		stats.Duration = r.now().Sub(started)
		r.mu.Lock()
		r.last = stats
		r.mu.Unlock()
	}()

	if !r.config.Todo.Enabled {
		stats.Disabled = true
		r.log.Debug().Ctx(ctx).Msg("todo disabled, skipping checks")
		return todo.Snapshot{Timestamp: started, Items: []todo.Item{}}, nil
	}

	if !force {
		snap, err := r.cache.Load()
		if err != nil {
			r.log.Debug().Ctx(ctx).Err(err).Msg("cache unreadable, running checks")
		} else if snap.Fresh(started, r.config.Todo.CacheTTL) {
			stats.Cached = true
			r.log.Debug().Ctx(ctx).
				Time("cached_at", snap.Timestamp).
				Int("items", len(snap.Items)).
				Msg("serving cached snapshot")
			items := append([]todo.Item{}, snap.Items...)
			todo.Sort(items)
			return todo.Snapshot{Timestamp: snap.Timestamp, Items: items}, nil
		}
	}

	providers := r.Enabled()
	results := make([][]todo.Item, len(providers))
	stats.Providers = make([]checks.Stat, len(providers))

	env := checks.Env{
		Config: r.config,
		Exec:   r.exec,
		HTTP:   r.http,
		Now:    r.now,
	}

	workers := r.config.Todo.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range providers {
		g.Go(func() error {
			results[i], stats.Providers[i] = r.runProvider(ctx, p, env)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return todo.Snapshot{}, err
	}

	snap := todo.Snapshot{Timestamp: started, Items: r.merge(ctx, results)}
	todo.Sort(snap.Items)

	if err := r.cache.Save(snap, runID); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Msg("failed to write todo cache")
	}

	r.log.Debug().Ctx(ctx).
		Int("providers", len(providers)).
		Int("items", len(snap.Items)).
		Dur("elapsed", r.now().Sub(started)).
		Msg("checks complete")

	return snap, nil
}

type providerResult struct {
	items []todo.Item
	err   error
}

// runProvider invokes one provider under its own timeout. The provider runs
// in a separate goroutine so a check that ignores its context cannot hold
// up the run past the deadline.
func (r *Registry) runProvider(ctx context.Context, p checks.Provider, env checks.Env) ([]todo.Item, checks.Stat) {
	cat := p.Category()
	ctx = logging.WithCategory(ctx, string(cat))
	env.Log = logging.ComponentCtx(ctx, "checks")

	stat := checks.Stat{Category: cat}
	start := time.Now()

	timeout := r.config.Todo.ProviderTimeout
	if timeout <= 0 {
		timeout = config.DefaultTodo().ProviderTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan providerResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Debug().Ctx(ctx).Str("stack", string(debug.Stack())).Msg("check panicked")
				done <- providerResult{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		items, err := p.Check(pctx, env)
		done <- providerResult{items: items, err: err}
	}()

	var res providerResult
	select {
	case res = <-done:
	case <-pctx.Done():
		res.err = pctx.Err()
	}

	stat.Duration = time.Since(start)
	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			res.err = fmt.Errorf("timed out after %s: %w", timeout, res.err)
		}
		stat.Err = res.err
		r.log.Debug().Ctx(ctx).Err(res.err).Dur("elapsed", stat.Duration).Msg("check failed")
		return nil, stat
	}

	valid := res.items[:0:0]
	for _, it := range res.items {
		if err := it.Validate(); err != nil {
			r.log.Debug().Ctx(ctx).Err(err).Str("id", it.ID).Msg("dropping invalid item")
			continue
		}
		valid = append(valid, it)
	}

	stat.Items = len(valid)
	return valid, stat
}

// merge concatenates provider results in category order, keeping the first
// item for any duplicated id.
func (r *Registry) merge(ctx context.Context, results [][]todo.Item) []todo.Item {
	seen := map[string]bool{}
	merged := []todo.Item{}
	for _, items := range results {
		for _, it := range items {
			if seen[it.ID] {
				r.log.Debug().Ctx(ctx).Str("id", it.ID).Msg("duplicate item id, keeping first")
				continue
			}
			seen[it.ID] = true
			merged = append(merged, it)
		}
	}
	return merged
}
