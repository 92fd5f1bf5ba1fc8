package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/pl/internal/core/todo"
)

// ddevMarker is the file that identifies a DDEV project directory.
const ddevMarker = ".ddev/config.yaml"

// Orphans reports DDEV projects under sites_dir that are missing from the
// site registry.
type Orphans struct{}

func (Orphans) Category() todo.Category { return todo.CategoryOrphan }

func (Orphans) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	cfg := env.Config
	if cfg.SitesDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(cfg.SitesDir)
	if err != nil {
		return nil, fmt.Errorf("read sites dir: %w", err)
	}

	registered := make(map[string]bool, len(cfg.Sites))
	for _, site := range cfg.Sites {
		if abs, err := filepath.Abs(site.Directory); err == nil {
			registered[abs] = true
		}
	}

	seq := todo.NewIDSeq(todo.CategoryOrphan)
	var items []todo.Item

	// ReadDir returns entries sorted by name.
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(cfg.SitesDir, entry.Name())
		if !fileExists(filepath.Join(dir, ddevMarker)) {
			continue
		}

		if _, ok := cfg.Sites[entry.Name()]; ok {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil && registered[abs] {
			continue
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryOrphan,
			Priority:    todo.PriorityMedium,
			Title:       fmt.Sprintf("Orphaned DDEV project %s", entry.Name()),
			Description: fmt.Sprintf("%s contains a DDEV project that is not in the site registry", dir),
			Site:        entry.Name(),
			Action:      "pl import " + entry.Name(),
		})
	}

	return items, nil
}
