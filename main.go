package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/commands"
	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/logging"
	"github.com/colonyops/pl/internal/core/styles"
	"github.com/colonyops/pl/internal/pl"
	"github.com/colonyops/pl/pkg/executil"
	"github.com/colonyops/pl/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// loadDotenv loads a .env file next to the config file. Values already in
// the environment win.
func loadDotenv(configPath string) error {
	err := godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))
	var pathErr *os.PathError
	if err != nil && !errors.As(err, &pathErr) {
		return err
	}
	return nil
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		plApp     = &pl.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "pl",
		Usage:     "Maintain a fleet of DDEV-hosted Drupal sites",
		UsageText: "pl [global options] command [command options]",
		Description: `pl tracks the sites registered in its configuration file and reports the
maintenance work they need.

Run 'pl todo' to browse pending tasks, or 'pl todo check --quiet' from cron.
Run 'pl doctor' to verify the installation.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PL_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "append JSON logs to this file instead of stderr",
				Sources:     cli.EnvVars("PL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "enable debug logging (same as --log-level debug)",
				Destination: &flags.Verbose,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory (todo cache)",
				Sources:     cli.EnvVars("PL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       fmt.Sprintf("color theme (%v)", styles.ThemeNames()),
				Sources:     cli.EnvVars("PL_THEME"),
				Destination: &flags.Theme,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level := flags.LogLevel
			if flags.Verbose {
				level = "debug"
			}

			logger, closer, err := logutils.New(level, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			if flags.Theme != "" {
				palette, ok := styles.GetPalette(flags.Theme)
				if !ok {
					return ctx, cli.Exit(fmt.Sprintf("unknown theme %q (available: %v)", flags.Theme, styles.ThemeNames()), 2)
				}
				styles.SetTheme(palette)
			}

			if err := loadDotenv(flags.ConfigPath); err != nil {
				log.Warn().Err(err).Msg("failed to load .env")
			}

			// A broken config is not fatal here: doctor and config validate
			// report it, every other command calls App.Require.
			store := confstore.NewFile(flags.ConfigPath)
			cfg, loadErr := config.Load(store, flags.ConfigPath)
			if loadErr != nil {
				log.Debug().Err(loadErr).Str("path", flags.ConfigPath).Msg("config not loaded")
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*plApp = *pl.NewApp(store, cfg, loadErr, flags.DataDir, &executil.RealExecutor{})

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewTodoCmd(flags, plApp).Register(app)
	app = commands.NewDoctorCmd(flags, plApp).Register(app)
	app = commands.NewConfigValidateCmd(flags, plApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
