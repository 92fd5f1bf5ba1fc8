package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Schedules reports production sites with no backup job in the operator's
// crontab.
type Schedules struct{}

func (Schedules) Category() todo.Category { return todo.CategorySchedule }

func (Schedules) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	lines, err := ReadCrontab(ctx, env)
	if err != nil {
		return nil, err
	}

	seq := todo.NewIDSeq(todo.CategorySchedule)
	var items []todo.Item

	err = eachSite(ctx, env, func(site config.Site) error {
		if site.Purpose != config.PurposeProduction {
			return nil
		}
		if hasBackupJob(lines, site.Name) {
			return nil
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategorySchedule,
			Priority:    todo.PriorityMedium,
			Title:       fmt.Sprintf("No scheduled backup for %s", site.Name),
			Description: "Production sites should have a backup job in crontab",
			Site:        site.Name,
			Action:      "pl backup schedule " + site.Name,
		})
		return nil
	})

	return items, err
}

// ReadCrontab returns the active (non-comment) lines of the current user's
// crontab. A user without a crontab has no lines.
func ReadCrontab(ctx context.Context, env Env) ([]string, error) {
	out, err := env.Exec.Run(ctx, "crontab", "-l")
	if err != nil {
		if strings.Contains(strings.ToLower(string(out)), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("crontab -l: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func hasBackupJob(lines []string, site string) bool {
	for _, line := range lines {
		if !strings.Contains(line, "backup") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if field == site || strings.HasSuffix(field, "/"+site) {
				return true
			}
		}
	}
	return false
}
