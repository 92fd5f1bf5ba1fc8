// Package config provides the typed view of the pl configuration document:
// the settings.todo tree, GitLab credentials and the site registry.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/colonyops/pl/internal/core/confstore"
)

// ErrConfigMissing is returned when the configuration file does not exist.
var ErrConfigMissing = errors.New("config file not found")

// Purpose classifies a registered site.
type Purpose string

const (
	PurposeProduction  Purpose = "production"
	PurposeTesting     Purpose = "testing"
	PurposeDevelopment Purpose = "development"
)

// Config is everything the todo engine reads from the document.
type Config struct {
	SitesDir   string `yaml:"sites_dir"`
	BackupsDir string `yaml:"backups_dir"`
	GitLab     GitLab `yaml:"gitlab"`
	Todo       Todo   `yaml:"todo"`

	// Sites is read from the top-level "sites" mapping.
	Sites map[string]Site `yaml:"-"`
	// Path is the configuration file the values came from.
	Path string `yaml:"-"`
}

// GitLab holds API access for the GIT check.
type GitLab struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

// Todo is settings.todo.
type Todo struct {
	Enabled          bool             `yaml:"enabled"`
	CacheTTL         time.Duration    `yaml:"cache_ttl"`
	ProviderTimeout  time.Duration    `yaml:"provider_timeout"`
	Workers          int              `yaml:"workers"`
	TestSitePatterns []string         `yaml:"test_site_patterns"`
	ComposerCommand  string           `yaml:"composer_command"`
	Thresholds       Thresholds       `yaml:"thresholds"`
	Categories       Categories       `yaml:"categories"`
	Schedule         Schedule         `yaml:"schedule"`
	Tokens           map[string]Token `yaml:"tokens"`
}

// Thresholds are the numeric limits checks compare against.
type Thresholds struct {
	TestInstanceWarnDays int `yaml:"test_instance_warn_days"`
	TokenRotationDays    int `yaml:"token_rotation_days"`
	BackupWarnDays       int `yaml:"backup_warn_days"`
	SSLWarnDays          int `yaml:"ssl_warn_days"`
	DiskWarnPercent      int `yaml:"disk_warn_percent"`
	DiskWarnMB           int `yaml:"disk_warn_mb"`
}

// Categories maps category toggle names to their enabled state.
type Categories map[string]bool

// Enabled reports whether the toggle is on. Missing toggles default to on.
func (c Categories) Enabled(toggle string) bool {
	v, ok := c[toggle]
	return !ok || v
}

// Schedule configures the periodic `todo check --quiet` run.
type Schedule struct {
	Cron    string `yaml:"cron"`
	LogFile string `yaml:"log_file"`
}

// Token records when an API token was last rotated.
type Token struct {
	LastRotated Timestamp `yaml:"last_rotated"`
}

// Site is one entry of the site registry.
type Site struct {
	Name            string    `yaml:"-"`
	Directory       string    `yaml:"directory"`
	Purpose         Purpose   `yaml:"purpose"`
	Created         Timestamp `yaml:"created"`
	Domain          string    `yaml:"domain"`
	InstallComplete *bool     `yaml:"install_complete"`
}

// DefaultTodo returns settings.todo defaults.
func DefaultTodo() Todo {
	return Todo{
		Enabled:          true,
		CacheTTL:         10 * time.Minute,
		ProviderTimeout:  30 * time.Second,
		Workers:          4,
		TestSitePatterns: []string{"*-test", "*_test", "*-stg", "*_stg", "test-*"},
		ComposerCommand:  "composer",
		Thresholds: Thresholds{
			TestInstanceWarnDays: 7,
			TokenRotationDays:    90,
			BackupWarnDays:       7,
			SSLWarnDays:          14,
			DiskWarnPercent:      85,
			DiskWarnMB:           0,
		},
		Categories: Categories{},
		Schedule: Schedule{
			Cron: "0 7 * * *",
		},
		Tokens: map[string]Token{},
	}
}

// DefaultConfig returns a Config with defaults and an empty registry.
func DefaultConfig() Config {
	return Config{
		Todo:  DefaultTodo(),
		Sites: map[string]Site{},
	}
}

// Load reads the typed configuration from store. configPath must point at the
// backing file; a missing file yields ErrConfigMissing.
func Load(store confstore.Store, configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigMissing, configPath)
			}
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	cfg.Path = configPath

	if err := confstore.GetOr(store, "settings", &cfg); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := confstore.GetOr(store, "sites", &cfg.Sites); err != nil {
		return nil, fmt.Errorf("parse sites: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills values derived from other settings or the environment.
func (c *Config) applyDefaults() {
	defaults := DefaultTodo()

	if c.SitesDir == "" && c.Path != "" {
		c.SitesDir = filepath.Dir(c.Path)
	}
	if token := os.Getenv("GITLAB_TOKEN"); token != "" {
		c.GitLab.Token = token
	}
	if c.Todo.Workers == 0 {
		c.Todo.Workers = defaults.Workers
	}
	if c.Todo.ProviderTimeout == 0 {
		c.Todo.ProviderTimeout = defaults.ProviderTimeout
	}
	if c.Todo.ComposerCommand == "" {
		c.Todo.ComposerCommand = defaults.ComposerCommand
	}
	if c.Todo.Categories == nil {
		c.Todo.Categories = Categories{}
	}
	if c.Todo.Tokens == nil {
		c.Todo.Tokens = map[string]Token{}
	}
	if c.Sites == nil {
		c.Sites = map[string]Site{}
	}

	for name, s := range c.Sites {
		s.Name = name
		if s.Directory == "" && c.SitesDir != "" {
			s.Directory = filepath.Join(c.SitesDir, name)
		}
		c.Sites[name] = s
	}
}

// SortedSites returns the registry ordered by site name, the iteration order
// every per-site check uses so ids stay stable between runs.
func (c *Config) SortedSites() []Site {
	names := make([]string, 0, len(c.Sites))
	for name := range c.Sites {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Site, 0, len(names))
	for _, name := range names {
		out = append(out, c.Sites[name])
	}
	return out
}

// BackupDir returns where backups for site are expected.
func (c *Config) BackupDir(site Site) string {
	if c.BackupsDir != "" {
		return filepath.Join(c.BackupsDir, site.Name)
	}
	return filepath.Join(site.Directory, "sitebackups")
}
