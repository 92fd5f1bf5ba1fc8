package checks

import (
	"context"
	"fmt"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Ghosts reports registry entries whose directory no longer exists.
type Ghosts struct{}

func (Ghosts) Category() todo.Category { return todo.CategoryGhost }

func (Ghosts) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	seq := todo.NewIDSeq(todo.CategoryGhost)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if site.Directory == "" || dirExists(site.Directory) {
			return nil
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryGhost,
			Priority:    todo.PriorityMedium,
			Title:       fmt.Sprintf("Site %s directory is missing", site.Name),
			Description: fmt.Sprintf("%s is registered but %s does not exist", site.Name, site.Directory),
			Site:        site.Name,
			Action:      "pl remove " + site.Name,
		})
		return nil
	})

	return items, err
}
