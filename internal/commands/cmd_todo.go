package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/internal/metrics"
	"github.com/colonyops/pl/internal/pl"
	"github.com/colonyops/pl/internal/tui"
	"github.com/colonyops/pl/pkg/iojson"
	"github.com/colonyops/pl/pkg/logutils"
	"github.com/colonyops/pl/pkg/profiler"
)

// Overridden in tests.
var (
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	runTUI           = tui.Run
)

const disabledWarning = "todo checks are disabled (settings.todo.enabled is false)"

// TodoCmd implements the pl todo command group.
type TodoCmd struct {
	flags *Flags
	app   *pl.App

	list         listOpts
	profilerPort int

	// ignore flags
	ignoreReason  string
	ignoreExpires string

	// ignored flags
	ignoredJSON bool

	// schedule install flags
	scheduleCron    string
	scheduleLogFile string
}

type listOpts struct {
	priority    string
	category    string
	site        string
	quiet       bool
	json        bool
	showIgnored bool
	noCache     bool
	digest      bool
	metricsFile string
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *pl.App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Show maintenance tasks across all sites",
		Description: `Aggregates pending maintenance work: GitLab issues, stale test sites, token
rotation, orphaned and ghost sites, backups, security and version updates,
uncommitted work, disk usage and SSL certificates.

Results are cached for settings.todo.cache_ttl. Ignored items are hidden
unless --show-ignored is given.

Run without a subcommand on a terminal to open the interactive browser.

Examples:
  pl todo list --priority high
  pl todo check --quiet
  pl todo ignore SEC-001 --reason "scheduled for next week" --expires 14d
  pl todo token linode`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "enable pprof HTTP endpoint on 127.0.0.1 at this port while todo runs (e.g., 6060)",
				Sources:     cli.EnvVars("PL_PROFILER_PORT"),
				Destination: &cmd.profilerPort,
			},
		},
		OnUsageError: onUsageError,
		Action:       cmd.runDefault,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.checkCmd(),
			cmd.refreshCmd(),
			cmd.resolveCmd(),
			cmd.ignoreCmd(),
			cmd.unignoreCmd(),
			cmd.ignoredCmd(),
			cmd.tokenCmd(),
			cmd.scheduleCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "priority",
			Aliases:     []string{"p"},
			Usage:       "only show items of this priority (high, medium, low)",
			Destination: &cmd.list.priority,
		},
		&cli.StringFlag{
			Name:        "category",
			Aliases:     []string{"c"},
			Usage:       "only show items of this category (code prefix such as SEC, or a toggle name)",
			Destination: &cmd.list.category,
		},
		&cli.StringFlag{
			Name:        "site",
			Aliases:     []string{"s"},
			Usage:       "only show items for this site",
			Destination: &cmd.list.site,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "print a one-line summary only",
			Destination: &cmd.list.quiet,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the view as JSON",
			Destination: &cmd.list.json,
		},
		&cli.BoolFlag{
			Name:        "show-ignored",
			Aliases:     []string{"a"},
			Usage:       "include ignored and resolved items",
			Destination: &cmd.list.showIgnored,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "run every check instead of using cached results",
			Destination: &cmd.list.noCache,
		},
		&cli.BoolFlag{
			Name:        "digest",
			Usage:       "print a plain-text digest grouped by category",
			Destination: &cmd.list.digest,
		},
		&cli.StringFlag{
			Name:        "metrics-file",
			Usage:       "write Prometheus metrics for the run to this file (node_exporter textfile format)",
			Destination: &cmd.list.metricsFile,
		},
	}
}

func (cmd *TodoCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:         "list",
		Aliases:      []string{"ls"},
		Usage:        "List todo items",
		UsageText:    "pl todo list [--priority P] [--category C] [--site S] [--quiet] [--json] [--show-ignored] [--no-cache]",
		Flags:        cmd.listFlags(),
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runView(ctx, c, false)
		},
	}
}

func (cmd *TodoCmd) checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "List todo items for scripted and scheduled use",
		UsageText: "pl todo check [list options]",
		Description: `Same as list. With --quiet a single stable line is printed:

  pl todo: N items (H high, M medium, L low)

The exit status is 0 whenever the checks ran, whatever was found.`,
		Flags:        cmd.listFlags(),
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runView(ctx, c, false)
		},
	}
}

func (cmd *TodoCmd) refreshCmd() *cli.Command {
	return &cli.Command{
		Name:         "refresh",
		Usage:        "Clear the cache, run every check and list the results",
		UsageText:    "pl todo refresh [list options]",
		Flags:        cmd.listFlags(),
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runView(ctx, c, true)
		},
	}
}

func (cmd *TodoCmd) runDefault(ctx context.Context, c *cli.Command) error {
	if c.NArg() > 0 {
		return usageError("unknown todo command %q. Run 'pl todo --help' for usage", c.Args().First())
	}

	if !stdoutIsTerminal() {
		return cmd.runView(ctx, c, false)
	}

	if err := cmd.app.Require(); err != nil {
		return configError(err)
	}
	if !cmd.app.Config.Todo.Enabled {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, disabledWarning)
		return nil
	}

	// Console logs would corrupt the alternate screen.
	logutils.Stderr.Hold()
	defer func() { _ = logutils.Stderr.Release() }()

	return profiler.Serve(ctx, cmd.profilerPort, func() error {
		return runTUI(ctx, cmd.app.Todos, cmd.app.Ignores, tui.Options{
			Watch: []string{cmd.flags.ConfigPath, cmd.app.Cache.Path()},
		})
	})
}

func (cmd *TodoCmd) runView(ctx context.Context, c *cli.Command, refresh bool) error {
	err := cmd.view(ctx, c, refresh)
	if err == nil || !cmd.list.json {
		return err
	}

	// Scripted consumers get the failure as JSON on stderr.
	code := exitConfig
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	_ = iojson.WriteError(c.Root().ErrWriter, err.Error(), map[string]any{"exit_code": code})
	return cli.Exit("", code)
}

func (cmd *TodoCmd) view(ctx context.Context, c *cli.Command, refresh bool) error {
	if err := cmd.app.Require(); err != nil {
		return configError(err)
	}

	filter, err := cmd.list.filter()
	if err != nil {
		return err
	}

	if !cmd.app.Config.Todo.Enabled {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, disabledWarning)
		return nil
	}

	opts := pl.ViewOptions{
		Filter:      filter,
		ShowIgnored: cmd.list.showIgnored,
		Force:       cmd.list.noCache,
	}

	var view todo.View
	err = profiler.Serve(ctx, cmd.profilerPort, func() error {
		var err error
		if refresh {
			view, err = cmd.app.Todos.Refresh(ctx, opts)
		} else {
			view, err = cmd.app.Todos.View(ctx, opts)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("run checks: %w", err)
	}

	if cmd.list.metricsFile != "" {
		stats := cmd.app.Todos.LastRun()
		run := metrics.Run{
			Timestamp: view.Timestamp,
			Cached:    stats.Cached,
			Providers: stats.Providers,
		}
		if err := metrics.WriteTextfile(cmd.list.metricsFile, view, run); err != nil {
			return cli.Exit(err.Error(), exitConfig)
		}
	}

	w := c.Root().Writer
	switch {
	case cmd.list.json:
		return iojson.WriteWith(w, c.Root().ErrWriter, view)
	case cmd.list.quiet:
		_, err := fmt.Fprintln(w, quietLine(view))
		return err
	case cmd.list.digest:
		renderDigest(w, view)
	default:
		renderList(w, view)
	}

	return nil
}

// filter validates the filter flags.
func (o listOpts) filter() (todo.Filter, error) {
	var f todo.Filter

	if o.priority != "" {
		p, err := todo.ParsePriority(o.priority)
		if err != nil {
			return f, usageError("%v", err)
		}
		f.Priority = p
	}

	if o.category != "" {
		if cat, err := todo.ParseCategory(o.category); err == nil {
			f.Category = string(cat)
		} else if matchesCategoryPrefix(o.category) {
			f.Category = o.category
		} else {
			return f, usageError("unknown category %q", o.category)
		}
	}

	f.Site = o.site
	return f, nil
}

func matchesCategoryPrefix(prefix string) bool {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	for _, c := range todo.Categories() {
		if strings.HasPrefix(string(c), prefix) {
			return true
		}
	}
	return false
}
