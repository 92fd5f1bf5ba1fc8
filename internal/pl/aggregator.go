package pl

import (
	"context"

	"github.com/colonyops/pl/internal/core/todo"
)

// ViewOptions selects what Aggregator.View returns.
type ViewOptions struct {
	Filter      todo.Filter
	ShowIgnored bool
	// Force bypasses the cache and runs every enabled check.
	Force bool
}

// Aggregator composes the registry, cache and ignore list into the view
// presenters render.
type Aggregator struct {
	registry *Registry
	ignores  *IgnoreService
}

// NewAggregator creates an Aggregator.
func NewAggregator(registry *Registry, ignores *IgnoreService) *Aggregator {
	return &Aggregator{registry: registry, ignores: ignores}
}

// View obtains items (cache or fresh), then filters, suppresses ignored
// items unless ShowIgnored, sorts and counts.
func (a *Aggregator) View(ctx context.Context, opts ViewOptions) (todo.View, error) {
	snap, err := a.registry.RunAll(ctx, opts.Force)
	if err != nil {
		return todo.View{}, err
	}

	ignored, err := a.ignores.Active()
	if err != nil {
		return todo.View{}, err
	}

	return todo.BuildView(snap, ignored, todo.ViewOptions{
		Filter:      opts.Filter,
		ShowIgnored: opts.ShowIgnored,
	}), nil
}

// Refresh clears the cache and runs every enabled check.
func (a *Aggregator) Refresh(ctx context.Context, opts ViewOptions) (todo.View, error) {
	if err := a.registry.ClearCache(); err != nil {
		a.registry.log.Warn().Err(err).Msg("failed to clear todo cache")
	}
	opts.Force = true
	return a.View(ctx, opts)
}

// LastRun returns stats of the most recent registry run.
func (a *Aggregator) LastRun() RunStats {
	return a.registry.LastRun()
}
