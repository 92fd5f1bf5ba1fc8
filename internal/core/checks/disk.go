package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Disk reports a filling filesystem under sites_dir and, when disk_warn_mb
// is set, individual sites larger than it.
type Disk struct{}

func (Disk) Category() todo.Category { return todo.CategoryDisk }

func (Disk) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	cfg := env.Config
	th := cfg.Todo.Thresholds
	seq := todo.NewIDSeq(todo.CategoryDisk)
	var items []todo.Item

	if th.DiskWarnPercent > 0 {
		root := cfg.SitesDir
		if root == "" {
			root = "/"
		}

		usage, mount, err := filesystemUsage(ctx, env, root)
		if err != nil {
			env.Log.Debug().Err(err).Str("path", root).Msg("disk usage unavailable")
		} else if usage >= th.DiskWarnPercent {
			priority := todo.PriorityMedium
			if usage >= 95 {
				priority = todo.PriorityHigh
			}
			items = append(items, todo.Item{
				ID:          seq.Next(),
				Category:    todo.CategoryDisk,
				Priority:    priority,
				Title:       fmt.Sprintf("Disk usage at %d%% on %s", usage, mount),
				Description: fmt.Sprintf("Usage is above the %d%% warning threshold", th.DiskWarnPercent),
				Action:      "du -sh " + strings.TrimRight(root, "/") + "/*",
			})
		}
	}

	if th.DiskWarnMB <= 0 {
		return items, nil
	}

	err := eachSite(ctx, env, func(site config.Site) error {
		if !dirExists(site.Directory) {
			return nil
		}

		mb, err := directorySizeMB(ctx, env, site.Directory)
		if err != nil {
			return err
		}
		if mb < th.DiskWarnMB {
			return nil
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryDisk,
			Priority:    todo.PriorityLow,
			Title:       fmt.Sprintf("%s uses %d MB of disk", site.Name, mb),
			Description: fmt.Sprintf("Sites above %d MB should be cleaned up", th.DiskWarnMB),
			Site:        site.Name,
			Action:      "pl cleanup " + site.Name,
		})
		return nil
	})

	return items, err
}

// filesystemUsage parses POSIX `df -Pk` output for path, returning the used
// percentage and mount point.
func filesystemUsage(ctx context.Context, env Env, path string) (int, string, error) {
	out, err := env.Exec.Run(ctx, "df", "-Pk", path)
	if err != nil {
		return 0, "", fmt.Errorf("df: %w", err)
	}
	return parseDF(string(out))
}

func parseDF(output string) (int, string, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return 0, "", fmt.Errorf("unexpected df output %q", output)
	}

	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 6 {
		return 0, "", fmt.Errorf("unexpected df line %q", lines[len(lines)-1])
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(fields[4], "%"))
	if err != nil {
		return 0, "", fmt.Errorf("parse capacity %q: %w", fields[4], err)
	}
	return pct, strings.Join(fields[5:], " "), nil
}

func directorySizeMB(ctx context.Context, env Env, dir string) (int, error) {
	out, err := env.Exec.Run(ctx, "du", "-sk", dir)
	if err != nil {
		return 0, fmt.Errorf("du: %w", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected du output %q", string(out))
	}
	kb, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("parse du size %q: %w", fields[0], err)
	}
	return kb / 1024, nil
}
