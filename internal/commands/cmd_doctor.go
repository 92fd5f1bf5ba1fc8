package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/pl/internal/core/doctor"
	"github.com/colonyops/pl/internal/core/styles"
	"github.com/colonyops/pl/internal/pl"
	"github.com/colonyops/pl/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *pl.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *pl.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your pl setup",
		UsageText:   "pl doctor [options]",
		Description: "Checks the configuration file, external tools, data directories and the todo ignore list.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., prune expired ignore entries)",
				Destination: &cmd.autofix,
			},
		},
		OnUsageError: onUsageError,
		Action:       cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	switch cmd.format {
	case "text", "json":
	default:
		return usageError("unknown format %q (expected text or json)", cmd.format)
	}

	report := cmd.app.Doctor.RunChecks(ctx, cmd.flags.ConfigPath, cmd.autofix)

	if cmd.format == "json" {
		out := doctorJSON{
			Healthy: report.Healthy(),
			Summary: summaryJSON{Passed: report.Passed, Warned: report.Warned, Failed: report.Failed},
			Checks:  report.Results,
		}
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		renderDoctor(c.Root().ErrWriter, report, !cmd.autofix)
	}

	if !report.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

type doctorJSON struct {
	Healthy bool            `json:"healthy"`
	Summary summaryJSON     `json:"summary"`
	Checks  []doctor.Result `json:"checks"`
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusPass:
		return styles.TextSuccessStyle.Render(styles.IconPass)
	case doctor.StatusWarn:
		return styles.TextWarningStyle.Render(styles.IconWarn)
	default:
		return styles.TextErrorStyle.Render(styles.IconFail)
	}
}

// renderDoctor writes the human report. The autofix hint is only shown
// when hint is set and something is fixable.
func renderDoctor(w io.Writer, report doctor.Report, hint bool) {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styles.TextPrimaryBoldStyle.Render("pl doctor") + "\n")
	b.WriteString(styles.TextMutedStyle.Render(strings.Repeat("─", 40)) + "\n\n")

	for _, result := range report.Results {
		b.WriteString(styles.TextForegroundBoldStyle.Render(result.Name) + "\n")
		for _, item := range result.Items {
			line := "  " + statusIcon(item.Status) + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.TextMutedStyle.Render(item.Detail)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s  %s  %s\n",
		styles.TextSuccessStyle.Render(fmt.Sprintf("%d passed", report.Passed)),
		styles.TextWarningStyle.Render(fmt.Sprintf("%d warnings", report.Warned)),
		styles.TextErrorStyle.Render(fmt.Sprintf("%d failed", report.Failed)),
	)

	if hint && report.Fixable > 0 {
		b.WriteString("\n" + styles.TextMutedStyle.Render(
			fmt.Sprintf("Run 'pl doctor --autofix' to fix %d issue(s)", report.Fixable)) + "\n")
	}

	_, _ = io.WriteString(w, b.String())
}
