// Command docgen generates CLI reference documentation from the pl command
// definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/commands"
	"github.com/colonyops/pl/internal/pl"
)

func main() {
	flags := &commands.Flags{}
	app := &pl.App{}

	root := &cli.Command{
		Name:      "pl",
		Usage:     "Maintain a fleet of DDEV-hosted Drupal sites",
		UsageText: "pl [global options] command [command options]",
		Description: `pl tracks the sites registered in its configuration file and reports the
maintenance work they need.

Run 'pl todo' to browse pending tasks, or 'pl todo check --quiet' from cron.
Run 'pl doctor' to verify the installation.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("PL_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "append JSON logs to this file instead of stderr",
				Sources: cli.EnvVars("PL_LOG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging (same as --log-level debug)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("PL_CONFIG"),
				Value:   "$XDG_CONFIG_HOME/pl/pl.yml",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory (todo cache)",
				Sources: cli.EnvVars("PL_DATA_DIR"),
				Value:   "$XDG_DATA_HOME/pl",
			},
			&cli.StringFlag{
				Name:    "theme",
				Usage:   "color theme",
				Sources: cli.EnvVars("PL_THEME"),
			},
		},
	}

	root = commands.NewTodoCmd(flags, app).Register(root)
	root = commands.NewDoctorCmd(flags, app).Register(root)
	root = commands.NewConfigValidateCmd(flags, app).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
