// Package todo defines the maintenance item model: categories, priorities,
// stable IDs, ignore entries and the filter/sort pipeline presenters consume.
package todo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidItem is returned by Item.Validate.
var ErrInvalidItem = errors.New("invalid todo item")

// Category identifies the check family an item came from.
type Category string

const (
	CategoryGitLab     Category = "GIT"
	CategoryTestSite   Category = "TST"
	CategoryToken      Category = "TOK"
	CategoryOrphan     Category = "ORP"
	CategoryGhost      Category = "GHO"
	CategoryIncomplete Category = "INC"
	CategoryBackup     Category = "BAK"
	CategorySchedule   Category = "SCH"
	CategorySecurity   Category = "SEC"
	CategoryVersion    Category = "VER"
	CategoryGitWork    Category = "GWK"
	CategoryDisk       Category = "DSK"
	CategorySSL        Category = "SSL"
)

type categoryInfo struct {
	code   Category
	toggle string
	label  string
}

// categories is the canonical enumeration order. Merge order and the
// secondary sort key both follow it.
var categories = []categoryInfo{
	{CategoryGitLab, "gitlab", "GitLab issues"},
	{CategoryTestSite, "test_instances", "Stale test sites"},
	{CategoryToken, "tokens", "Token rotation"},
	{CategoryOrphan, "orphaned_sites", "Orphaned projects"},
	{CategoryGhost, "ghost_sites", "Ghost sites"},
	{CategoryIncomplete, "incomplete_installs", "Incomplete installs"},
	{CategoryBackup, "backups", "Backups"},
	{CategorySchedule, "backup_schedules", "Backup schedules"},
	{CategorySecurity, "security", "Security updates"},
	{CategoryVersion, "versions", "Version updates"},
	{CategoryGitWork, "uncommitted_work", "Uncommitted work"},
	{CategoryDisk, "disk_usage", "Disk usage"},
	{CategorySSL, "ssl", "SSL certificates"},
}

// Categories returns every category in enumeration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.code
	}
	return out
}

func (c Category) info() (categoryInfo, int, bool) {
	for i, ci := range categories {
		if ci.code == c {
			return ci, i, true
		}
	}
	return categoryInfo{}, len(categories), false
}

// IsValid reports whether c is a known category code.
func (c Category) IsValid() bool {
	_, _, ok := c.info()
	return ok
}

// Rank is the position of c in the enumeration; unknown codes sort last.
func (c Category) Rank() int {
	_, i, _ := c.info()
	return i
}

// Toggle is the key under settings.todo.categories that enables c.
func (c Category) Toggle() string {
	ci, _, _ := c.info()
	return ci.toggle
}

// Label is a human readable name for c.
func (c Category) Label() string {
	ci, _, ok := c.info()
	if !ok {
		return string(c)
	}
	return ci.label
}

// ParseCategory accepts a category code or toggle name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, ci := range categories {
		if strings.EqualFold(s, string(ci.code)) || strings.EqualFold(s, ci.toggle) {
			return ci.code, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Priority is the urgency assigned by the originating check.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities returns priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank orders priorities: high < medium < low < unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p.Rank() < 3
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q: must be one of high, medium, low", s)
	}
	return p, nil
}

// Item is a single actionable finding.
type Item struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Site        string   `json:"site"`
	Action      string   `json:"action"`
}

// Validate checks the invariants every provider must uphold.
func (it Item) Validate() error {
	cat, _, err := ParseID(it.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	if !it.Category.IsValid() {
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidItem, it.ID, it.Category)
	}
	if cat != it.Category {
		return fmt.Errorf("%w: %s: id prefix does not match category %s", ErrInvalidItem, it.ID, it.Category)
	}
	if !it.Priority.IsValid() {
		return fmt.Errorf("%w: %s: invalid priority %q", ErrInvalidItem, it.ID, it.Priority)
	}
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("%w: %s: empty title", ErrInvalidItem, it.ID)
	}
	return nil
}
