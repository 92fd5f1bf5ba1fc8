package checks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/pkg/executil"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SitesDir = t.TempDir()
	return &cfg
}

func testEnv(cfg *config.Config, exec executil.Executor) Env {
	if exec == nil {
		exec = &executil.RecordingExecutor{}
	}
	return Env{
		Config: cfg,
		Exec:   exec,
		Now:    func() time.Time { return testNow },
		Log:    zerolog.Nop(),
	}
}

// addSite registers a site and, when withDir is set, creates its directory
// with a DDEV marker.
func addSite(t *testing.T, cfg *config.Config, site config.Site, withDir bool) config.Site {
	t.Helper()
	if site.Directory == "" {
		site.Directory = filepath.Join(cfg.SitesDir, site.Name)
	}
	if withDir {
		writeFile(t, filepath.Join(site.Directory, ddevMarker), "name: "+site.Name+"\n")
	}
	cfg.Sites[site.Name] = site
	return site
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func ts(t time.Time) config.Timestamp {
	return config.Timestamp{Time: t}
}

func ids(items []todo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sites(items []todo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Site
	}
	return out
}

func requireValid(t *testing.T, items []todo.Item) {
	t.Helper()
	for _, it := range items {
		require.NoError(t, it.Validate(), it.ID)
	}
}
