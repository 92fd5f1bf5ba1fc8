// Package checks implements the todo check providers. Each provider scans
// one maintenance dimension and returns fully formed todo items. Providers
// are stateless: everything they read comes from Env.
package checks

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/pkg/executil"
)

// Env is the world a provider may observe.
type Env struct {
	Config *config.Config
	Exec   executil.Executor
	HTTP   *http.Client
	Now    func() time.Time
	Log    zerolog.Logger
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e Env) httpClient() *http.Client {
	if e.HTTP != nil {
		return e.HTTP
	}
	return http.DefaultClient
}

// Provider is one check family.
//
// Check must not fail because a single input (a site, a token) is
// unreadable: such inputs are logged and skipped. A returned error means the
// provider as a whole could not run, and the registry treats it as zero
// findings.
type Provider interface {
	Category() todo.Category
	Check(ctx context.Context, env Env) ([]todo.Item, error)
}

// Func adapts a function to the Provider interface.
type Func struct {
	Cat todo.Category
	Fn  func(ctx context.Context, env Env) ([]todo.Item, error)
}

func (f Func) Category() todo.Category { return f.Cat }

func (f Func) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	return f.Fn(ctx, env)
}

// All returns every built-in provider in category enumeration order.
func All() []Provider {
	return []Provider{
		&GitLab{},
		&TestSites{},
		&Tokens{},
		&Orphans{},
		&Ghosts{},
		&Incomplete{},
		&Backups{},
		&Schedules{},
		&Security{},
		&Versions{},
		&GitWork{},
		&Disk{},
		&SSL{},
	}
}

// Stat describes one provider invocation within an aggregation run.
type Stat struct {
	Category todo.Category
	Duration time.Duration
	Items    int
	Err      error
}

// eachSite calls fn for every registered site in name order. Per-site errors
// are logged and do not stop the iteration; only context cancellation does.
func eachSite(ctx context.Context, env Env, fn func(site config.Site) error) error {
	for _, site := range env.Config.SortedSites() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(site); err != nil {
			env.Log.Debug().Err(err).Str("site", site.Name).Msg("site check failed")
		}
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
