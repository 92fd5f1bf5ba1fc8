// Package schedule manages the crontab entry that runs the periodic todo
// check.
package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/pl/pkg/executil"
)

// Marker tags the managed crontab line.
const Marker = "# pl-todo"

// Status describes the managed crontab entry.
type Status struct {
	Installed bool   `json:"installed"`
	Line      string `json:"line,omitempty"`
}

// Crontab edits the current user's crontab through the crontab command.
type Crontab struct {
	exec executil.Executor
}

// NewCrontab creates a Crontab using exec to run the crontab binary.
func NewCrontab(exec executil.Executor) *Crontab {
	return &Crontab{exec: exec}
}

// Line renders the crontab entry running `<exe> todo check --quiet` on
// cron, appending output to logFile when set.
func Line(cron, exe, configPath, logFile string) string {
	var b strings.Builder
	b.WriteString(cron)
	b.WriteString(" ")
	b.WriteString(shellQuote(exe))
	if configPath != "" {
		b.WriteString(" --config ")
		b.WriteString(shellQuote(configPath))
	}
	b.WriteString(" todo check --quiet")
	if logFile != "" {
		b.WriteString(" >> ")
		b.WriteString(shellQuote(logFile))
		b.WriteString(" 2>&1")
	}
	b.WriteString(" ")
	b.WriteString(Marker)
	return b.String()
}

// Install replaces any managed entry with line, leaving other entries untouched.
func (c *Crontab) Install(ctx context.Context, line string) error {
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}

	kept := withoutManaged(lines)
	kept = append(kept, line)
	return c.write(ctx, kept)
}

// Remove deletes the managed entry. It reports whether one was present.
func (c *Crontab) Remove(ctx context.Context) (bool, error) {
	lines, err := c.read(ctx)
	if err != nil {
		return false, err
	}

	kept := withoutManaged(lines)
	if len(kept) == len(lines) {
		return false, nil
	}
	return true, c.write(ctx, kept)
}

// Status reports whether the managed entry is installed.
func (c *Crontab) Status(ctx context.Context) (Status, error) {
	lines, err := c.read(ctx)
	if err != nil {
		return Status{}, err
	}

	for _, line := range lines {
		if isManaged(line) {
			return Status{Installed: true, Line: line}, nil
		}
	}
	return Status{}, nil
}

func (c *Crontab) read(ctx context.Context) ([]string, error) {
	out, err := c.exec.Run(ctx, "crontab", "-l")
	if err != nil {
		if strings.Contains(strings.ToLower(string(out)), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("crontab -l: %w", err)
	}

	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (c *Crontab) write(ctx context.Context, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	if out, err := c.exec.RunInput(ctx, &buf, "crontab", "-"); err != nil {
		return fmt.Errorf("crontab -: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func isManaged(line string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), Marker)
}

func withoutManaged(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !isManaged(line) {
			kept = append(kept, line)
		}
	}
	return kept
}

const shellSpecial = " \t'\"$`\\;&|<>*?()[]{}#~"

// shellQuote single-quotes s when it contains characters cron's shell
// would interpret.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
