package checks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Backups reports sites without a backup newer than backup_warn_days.
// Testing sites are not expected to be backed up.
type Backups struct{}

func (Backups) Category() todo.Category { return todo.CategoryBackup }

func (Backups) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	cfg := env.Config
	warnDays := cfg.Todo.Thresholds.BackupWarnDays
	if warnDays <= 0 {
		return nil, nil
	}

	now := env.now()
	seq := todo.NewIDSeq(todo.CategoryBackup)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if site.Purpose == config.PurposeTesting || !dirExists(site.Directory) {
			return nil
		}

		priority := todo.PriorityMedium
		if site.Purpose == config.PurposeProduction {
			priority = todo.PriorityHigh
		}

		dir := cfg.BackupDir(site)
		newest, err := newestFile(dir)
		if err != nil {
			return err
		}

		item := todo.Item{
			Category: todo.CategoryBackup,
			Priority: priority,
			Site:     site.Name,
			Action:   "pl backup " + site.Name,
		}

		switch {
		case newest.IsZero():
			item.Title = fmt.Sprintf("No backups found for %s", site.Name)
			item.Description = fmt.Sprintf("%s contains no backup files", dir)
		case daysBetween(newest, now) >= warnDays:
			age := daysBetween(newest, now)
			item.Title = fmt.Sprintf("Last backup of %s is %d days old", site.Name, age)
			item.Description = fmt.Sprintf("Backups should be taken at least every %d days", warnDays)
		default:
			return nil
		}

		item.ID = seq.Next()
		items = append(items, item)
		return nil
	})

	return items, err
}

// newestFile returns the modification time of the most recent regular file
// in dir. A missing directory yields the zero time.
func newestFile(dir string) (time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read backup dir: %w", err)
	}

	var newest time.Time
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().UTC(); mt.After(newest) {
			newest = mt
		}
	}
	return newest, nil
}
