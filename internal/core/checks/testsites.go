package checks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// TestSites reports test instances kept around longer than
// test_instance_warn_days.
type TestSites struct{}

func (TestSites) Category() todo.Category { return todo.CategoryTestSite }

func (TestSites) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	cfg := env.Config
	warnDays := cfg.Todo.Thresholds.TestInstanceWarnDays
	if warnDays <= 0 {
		return nil, nil
	}

	now := env.now()
	seq := todo.NewIDSeq(todo.CategoryTestSite)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if !isTestSite(site, cfg.Todo.TestSitePatterns) {
			return nil
		}

		created, err := siteCreated(site)
		if err != nil {
			return err
		}

		age := daysBetween(created, now)
		if age < warnDays {
			return nil
		}

		priority := todo.PriorityLow
		if age >= warnDays*2 {
			priority = todo.PriorityMedium
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryTestSite,
			Priority:    priority,
			Title:       fmt.Sprintf("Test site %s is %d days old", site.Name, age),
			Description: fmt.Sprintf("Test instances older than %d days should be removed", warnDays),
			Site:        site.Name,
			Action:      "pl delete " + site.Name,
		})
		return nil
	})

	return items, err
}

func isTestSite(site config.Site, patterns []string) bool {
	if site.Purpose == config.PurposeTesting {
		return true
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, site.Name); ok {
			return true
		}
	}
	return false
}

// siteCreated prefers the registry's created timestamp and falls back to
// the directory modification time.
func siteCreated(site config.Site) (time.Time, error) {
	if !site.Created.IsZero() {
		return site.Created.Time, nil
	}

	info, err := os.Stat(site.Directory)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat site directory: %w", err)
	}
	return info.ModTime().UTC(), nil
}
