package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/internal/pl"
	"github.com/colonyops/pl/pkg/iojson"
)

// now is overridden in tests.
var now = time.Now

func (cmd *TodoCmd) resolveCmd() *cli.Command {
	return &cli.Command{
		Name:          "resolve",
		Aliases:       []string{"done"},
		Usage:         "Mark an item as resolved",
		UsageText:     "pl todo resolve <ID>",
		ShellComplete: ItemIDCompleter(cmd.app),
		OnUsageError:  onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			if err := cmd.app.Require(); err != nil {
				return configError(err)
			}
			if _, err := cmd.app.Ignores.Resolve(id); err != nil {
				return mutationError(err)
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Resolved %s\n", id)
			return nil
		},
	}
}

func (cmd *TodoCmd) ignoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "ignore",
		Usage:     "Hide an item from future views",
		UsageText: "pl todo ignore <ID> [--reason TEXT] [--expires WHEN]",
		Description: `Adds the item to settings.todo.ignored. Ignoring an id that is already
ignored replaces the earlier entry.

--expires accepts an RFC3339 timestamp, a date (YYYY-MM-DD), a day count
(14d) or a duration (36h). Expired entries stop suppressing the item.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "reason",
				Aliases:     []string{"r"},
				Usage:       "why the item is ignored",
				Destination: &cmd.ignoreReason,
			},
			&cli.StringFlag{
				Name:        "expires",
				Aliases:     []string{"e"},
				Usage:       "when the ignore lapses",
				Destination: &cmd.ignoreExpires,
			},
		},
		ShellComplete: ItemIDCompleter(cmd.app),
		OnUsageError:  onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			if err := cmd.app.Require(); err != nil {
				return configError(err)
			}

			var expires *time.Time
			if cmd.ignoreExpires != "" {
				t, err := todo.ParseExpiry(cmd.ignoreExpires, now())
				if err != nil {
					return usageError("%v", err)
				}
				expires = &t
			}

			entry, err := cmd.app.Ignores.Add(id, cmd.ignoreReason, expires)
			if err != nil {
				return mutationError(err)
			}

			out := c.Root().Writer
			_, _ = fmt.Fprintf(out, "Ignored %s", entry.ID)
			if entry.Expires != nil {
				_, _ = fmt.Fprintf(out, " until %s", entry.Expires.Format(time.DateOnly))
			}
			_, _ = fmt.Fprintln(out)
			return nil
		},
	}
}

func (cmd *TodoCmd) unignoreCmd() *cli.Command {
	return &cli.Command{
		Name:          "unignore",
		Usage:         "Remove an item from the ignore list",
		UsageText:     "pl todo unignore <ID>",
		ShellComplete: IgnoredIDCompleter(cmd.app),
		OnUsageError:  onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			if err := cmd.app.Require(); err != nil {
				return configError(err)
			}
			removed, err := cmd.app.Ignores.Remove(id)
			if err != nil {
				return mutationError(err)
			}
			if removed == 0 {
				_, _ = fmt.Fprintf(c.Root().Writer, "%s is not ignored\n", id)
				return nil
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Unignored %s\n", id)
			return nil
		},
	}
}

func (cmd *TodoCmd) ignoredCmd() *cli.Command {
	return &cli.Command{
		Name:         "ignored",
		Usage:        "List ignored and resolved items",
		UsageText:    "pl todo ignored [--json]",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print entries as JSON",
				Destination: &cmd.ignoredJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cmd.app.Require(); err != nil {
				return configError(err)
			}
			entries, err := cmd.app.Ignores.List()
			if err != nil {
				return cli.Exit(err.Error(), exitConfig)
			}
			if cmd.ignoredJSON {
				if entries == nil {
					entries = []todo.IgnoreEntry{}
				}
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, entries)
			}
			renderIgnored(c.Root().Writer, entries, now())
			return nil
		},
	}
}

func (cmd *TodoCmd) tokenCmd() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Record that an API token was rotated",
		UsageText: "pl todo token <NAME>",
		Description: `Stores the current time as settings.todo.tokens.<NAME>.last_rotated and
clears the cached results so the next view reflects the rotation.`,
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return usageError("expected exactly one token name, e.g. pl todo token linode")
			}
			if err := cmd.app.Require(); err != nil {
				return configError(err)
			}

			rotated, err := cmd.app.Tokens.Record(c.Args().First())
			switch {
			case errors.Is(err, pl.ErrEmptyToken), errors.Is(err, pl.ErrInvalidTokenName):
				return usageError("%v", err)
			case err != nil:
				return cli.Exit(err.Error(), exitConfig)
			}

			_, _ = fmt.Fprintf(c.Root().Writer, "Recorded rotation of %s at %s\n",
				c.Args().First(), rotated.Format(time.RFC3339))
			return nil
		},
	}
}
