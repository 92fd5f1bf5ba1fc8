package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/git"
	"github.com/colonyops/pl/internal/core/todo"
)

// GitWork reports site repositories with uncommitted changes or commits
// that were never pushed.
type GitWork struct{}

func (GitWork) Category() todo.Category { return todo.CategoryGitWork }

func (GitWork) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	g := git.NewExecutor("git", env.Exec)
	seq := todo.NewIDSeq(todo.CategoryGitWork)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if !dirExists(site.Directory) || !g.IsRepo(ctx, site.Directory) {
			return nil
		}

		changes, err := g.Changes(ctx, site.Directory)
		if err != nil {
			return err
		}
		unpushed, err := g.Unpushed(ctx, site.Directory)
		if err != nil {
			return err
		}
		if changes == 0 && unpushed == 0 {
			return nil
		}

		var parts []string
		if changes > 0 {
			parts = append(parts, plural(changes, "uncommitted change"))
		}
		if unpushed > 0 {
			parts = append(parts, plural(unpushed, "unpushed commit"))
		}

		desc := ""
		if branch, err := g.Branch(ctx, site.Directory); err == nil && branch != "" {
			desc = "On branch " + branch
		}

		priority := todo.PriorityLow
		if site.Purpose == config.PurposeProduction {
			priority = todo.PriorityMedium
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryGitWork,
			Priority:    priority,
			Title:       fmt.Sprintf("%s has %s", site.Name, strings.Join(parts, " and ")),
			Description: desc,
			Site:        site.Name,
			Action:      fmt.Sprintf("git -C %s status", site.Directory),
		})
		return nil
	})

	return items, err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
