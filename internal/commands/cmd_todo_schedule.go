package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/schedule"
)

// executable is overridden in tests.
var executable = os.Executable

func (cmd *TodoCmd) scheduleCmd() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Manage the crontab entry running `pl todo check --quiet`",
		Description: `The entry is tagged with "` + schedule.Marker + `" so it can be replaced or removed
without touching other crontab lines.`,
		OnUsageError: onUsageError,
		Commands: []*cli.Command{
			{
				Name:      "install",
				Usage:     "Install or replace the crontab entry",
				UsageText: "pl todo schedule install [--cron EXPR] [--log-file PATH]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "cron",
						Usage:       "cron expression (default: settings.todo.schedule.cron)",
						Destination: &cmd.scheduleCron,
					},
					&cli.StringFlag{
						Name:        "log-file",
						Usage:       "append output to this file (default: settings.todo.schedule.log_file)",
						Destination: &cmd.scheduleLogFile,
					},
				},
				OnUsageError: onUsageError,
				Action:       cmd.runScheduleInstall,
			},
			{
				Name:         "remove",
				Usage:        "Remove the crontab entry",
				OnUsageError: onUsageError,
				Action: func(ctx context.Context, c *cli.Command) error {
					removed, err := cmd.app.Crontab.Remove(ctx)
					if err != nil {
						return cli.Exit(err.Error(), exitConfig)
					}
					if !removed {
						_, _ = fmt.Fprintln(c.Root().Writer, "No scheduled check installed")
						return nil
					}
					_, _ = fmt.Fprintln(c.Root().Writer, "Removed scheduled check")
					return nil
				},
			},
			{
				Name:         "status",
				Usage:        "Show the installed crontab entry",
				OnUsageError: onUsageError,
				Action: func(ctx context.Context, c *cli.Command) error {
					st, err := cmd.app.Crontab.Status(ctx)
					if err != nil {
						return cli.Exit(err.Error(), exitConfig)
					}
					if !st.Installed {
						_, _ = fmt.Fprintln(c.Root().Writer, "Not installed")
						return nil
					}
					_, _ = fmt.Fprintf(c.Root().Writer, "Installed: %s\n", st.Line)
					return nil
				},
			},
		},
	}
}

func (cmd *TodoCmd) runScheduleInstall(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Require(); err != nil {
		return configError(err)
	}

	cron := cmd.scheduleCron
	if cron == "" {
		cron = cmd.app.Config.Todo.Schedule.Cron
	}
	if err := config.ValidateCron(cron); err != nil {
		return usageError("%v", err)
	}

	logFile := cmd.scheduleLogFile
	if logFile == "" {
		logFile = cmd.app.Config.Todo.Schedule.LogFile
	}

	exe, err := executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolve executable: %v", err), exitConfig)
	}

	configPath := cmd.flags.ConfigPath
	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}

	line := schedule.Line(cron, exe, configPath, logFile)
	if err := cmd.app.Crontab.Install(ctx, line); err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Installed: %s\n", line)
	return nil
}
