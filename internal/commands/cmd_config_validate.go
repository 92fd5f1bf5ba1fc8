package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/styles"
	"github.com/colonyops/pl/internal/pl"
	"github.com/colonyops/pl/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	app    *pl.App
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags, app *pl.App) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags, app: app}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "pl config validate [options]",
				Description: "Validates the configuration file: settings.todo values, globs, the cron expression and the site registry.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				OnUsageError: onUsageError,
				Action:       cmd.run,
			},
		},
	})

	return app
}

// validationIssue is one problem found in the configuration.
type validationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// validationIssues flattens err into per-field issues.
func validationIssues(path string, err error) []validationIssue {
	var issues []validationIssue

	if fileErr := config.ValidateFile(path); fileErr != nil && err == nil {
		err = fileErr
	}
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			issues = append(issues, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
		return issues
	}

	return append(issues, validationIssue{Message: err.Error()})
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	issues := validationIssues(cmd.flags.ConfigPath, cmd.app.ConfigErr)

	switch cmd.format {
	case "json":
		out := struct {
			Valid  bool              `json:"valid"`
			Path   string            `json:"path"`
			Errors []validationIssue `json:"errors,omitempty"`
		}{
			Valid:  len(issues) == 0,
			Path:   cmd.flags.ConfigPath,
			Errors: issues,
		}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	case "text":
		w := c.Root().Writer
		for _, issue := range issues {
			label := issue.Message
			if issue.Field != "" {
				label = issue.Field + ": " + issue.Message
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextErrorStyle.Render(styles.IconFail), label)
		}
		if len(issues) == 0 {
			_, _ = fmt.Fprintf(w, "%s Configuration is valid\n", styles.TextSuccessStyle.Render(styles.IconPass))
		} else {
			_, _ = fmt.Fprintf(w, "\n%d error(s) found in %s\n", len(issues), cmd.flags.ConfigPath)
		}
	default:
		return usageError("unknown format %q (expected text or json)", cmd.format)
	}

	if len(issues) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
