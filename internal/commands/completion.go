package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/internal/pl"
)

// ItemIDCompleter returns a ShellCompleteFunc that suggests item ids from the
// cached snapshot. It never runs checks, so completion stays fast.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ItemIDCompleter(app *pl.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}
		if app.Cache == nil {
			return
		}

		snap, err := app.Cache.Load()
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, it := range snap.Items {
			_, _ = fmt.Fprintln(w, it.ID)
		}
	}
}

// IgnoredIDCompleter suggests ids present in the ignore list.
func IgnoredIDCompleter(app *pl.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		entries, err := app.Ignores.List()
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			id := todo.NormalizeID(e.ID)
			if seen[id] {
				continue
			}
			seen[id] = true
			_, _ = fmt.Fprintln(w, id)
		}
	}
}

func completingFlag(cmd *cli.Command) bool {
	args := cmd.Args()
	if !args.Present() {
		return false
	}
	last := args.Slice()[args.Len()-1]
	return len(last) > 0 && last[0] == '-'
}
