package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks structural constraints of the loaded configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateTodo(),
		c.validateSites(),
	)
}

func (c *Config) validateTodo() error {
	t := c.Todo
	var errs criterio.FieldErrorsBuilder

	if t.CacheTTL < 0 {
		errs = errs.Append("settings.todo.cache_ttl", fmt.Errorf("must not be negative"))
	}
	if t.ProviderTimeout < 0 {
		errs = errs.Append("settings.todo.provider_timeout", fmt.Errorf("must not be negative"))
	}
	if t.Workers < 1 {
		errs = errs.Append("settings.todo.workers", fmt.Errorf("must be at least 1"))
	}

	thresholds := map[string]int{
		"test_instance_warn_days": t.Thresholds.TestInstanceWarnDays,
		"token_rotation_days":     t.Thresholds.TokenRotationDays,
		"backup_warn_days":        t.Thresholds.BackupWarnDays,
		"ssl_warn_days":           t.Thresholds.SSLWarnDays,
		"disk_warn_percent":       t.Thresholds.DiskWarnPercent,
		"disk_warn_mb":            t.Thresholds.DiskWarnMB,
	}
	for _, name := range sortedKeys(thresholds) {
		if thresholds[name] < 0 {
			errs = errs.Append("settings.todo.thresholds."+name, fmt.Errorf("must not be negative"))
		}
	}
	if t.Thresholds.DiskWarnPercent > 100 {
		errs = errs.Append("settings.todo.thresholds.disk_warn_percent", fmt.Errorf("must be at most 100"))
	}

	for i, pattern := range t.TestSitePatterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("settings.todo.test_site_patterns[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	if t.Schedule.Cron != "" {
		if err := ValidateCron(t.Schedule.Cron); err != nil {
			errs = errs.Append("settings.todo.schedule.cron", err)
		}
	}

	return errs.ToError()
}

func (c *Config) validateSites() error {
	var errs criterio.FieldErrorsBuilder

	for _, site := range c.SortedSites() {
		switch site.Purpose {
		case "", PurposeProduction, PurposeTesting, PurposeDevelopment:
		default:
			errs = errs.Append("sites."+site.Name+".purpose", fmt.Errorf("unknown purpose %q", site.Purpose))
		}
		if strings.Contains(site.Name, ".") {
			errs = errs.Append("sites."+site.Name, fmt.Errorf("site names must not contain dots"))
		}
	}

	return errs.ToError()
}

var cronMacros = map[string]bool{
	"@yearly": true, "@annually": true, "@monthly": true, "@weekly": true,
	"@daily": true, "@midnight": true, "@hourly": true, "@reboot": true,
}

// ValidateCron accepts five-field cron expressions and the common @macros.
// Field contents are left to cron itself.
func ValidateCron(expr string) error {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "@") {
		if !cronMacros[expr] {
			return fmt.Errorf("unknown cron macro %q", expr)
		}
		return nil
	}
	if n := len(strings.Fields(expr)); n != 5 {
		return fmt.Errorf("cron expression %q has %d fields, want 5", expr, n)
	}
	return nil
}

// ValidateFile performs the I/O checks used by `pl doctor`: the config file
// exists, is a regular file, and can be opened for writing.
func ValidateFile(path string) error {
	return criterio.ValidateStruct(
		criterio.Run("config_file", path, isWritableFile),
	)
}

func isWritableFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrConfigMissing
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	return f.Close()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
