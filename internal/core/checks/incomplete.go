package checks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Incomplete reports sites whose installation never finished: the registry
// marks install_complete false, or the directory exists without a DDEV
// project in it.
type Incomplete struct{}

func (Incomplete) Category() todo.Category { return todo.CategoryIncomplete }

func (Incomplete) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	seq := todo.NewIDSeq(todo.CategoryIncomplete)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if !dirExists(site.Directory) {
			// Missing directories are reported as ghosts.
			return nil
		}

		var reason string
		switch {
		case site.InstallComplete != nil && !*site.InstallComplete:
			reason = "install was started but not marked complete"
		case !fileExists(filepath.Join(site.Directory, ddevMarker)):
			reason = "site directory has no DDEV configuration"
		default:
			return nil
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryIncomplete,
			Priority:    todo.PriorityMedium,
			Title:       fmt.Sprintf("Incomplete install for %s", site.Name),
			Description: reason,
			Site:        site.Name,
			Action:      "pl install " + site.Name,
		})
		return nil
	})

	return items, err
}
