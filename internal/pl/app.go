package pl

import (
	"fmt"
	"path/filepath"

	"github.com/colonyops/pl/internal/core/checks"
	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/schedule"
	"github.com/colonyops/pl/internal/store/jsonfile"
	"github.com/colonyops/pl/pkg/executil"
)

// App is the central entry point for all pl operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Todos   *Aggregator
	Ignores *IgnoreService
	Tokens  *TokenService
	Doctor  *DoctorService
	Crontab *schedule.Crontab

	Registry *Registry
	Store    confstore.Store
	Cache    *jsonfile.Cache
	Config   *config.Config
	DataDir  string

	// ConfigErr is the error config.Load returned. Commands that need a
	// valid configuration call Require first.
	ConfigErr error
}

// NewApp constructs an App from explicit dependencies. cfg may be nil when
// loadErr is set; only the doctor is usable in that state.
func NewApp(store confstore.Store, cfg *config.Config, loadErr error, dataDir string, exec executil.Executor) *App {
	cache := jsonfile.NewCache(filepath.Join(dataDir, jsonfile.CacheFileName))
	ignores := NewIgnoreService(store)

	app := &App{
		Ignores:   ignores,
		Doctor:    NewDoctorService(cfg, loadErr, ignores, dataDir),
		Crontab:   schedule.NewCrontab(exec),
		Store:     store,
		Cache:     cache,
		Config:    cfg,
		DataDir:   dataDir,
		ConfigErr: loadErr,
	}

	if cfg != nil {
		app.Registry = NewRegistry(cfg, cache, exec, checks.All())
		app.Todos = NewAggregator(app.Registry, ignores)
		app.Tokens = NewTokenService(store, cfg, cache)
	}

	return app
}

// Require returns the configuration load error, if any.
func (a *App) Require() error {
	if a.ConfigErr != nil {
		return fmt.Errorf("load config: %w", a.ConfigErr)
	}
	if a.Config == nil {
		return fmt.Errorf("load config: %w", config.ErrConfigMissing)
	}
	return nil
}
