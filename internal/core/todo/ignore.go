package todo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default reasons recorded by the ignore and resolve commands.
const (
	ReasonIgnored  = "Manual ignore"
	ReasonResolved = "Manually resolved"
)

// IgnoreEntry suppresses an item id from default views.
type IgnoreEntry struct {
	ID        string     `yaml:"id" json:"id"`
	Reason    string     `yaml:"reason" json:"reason"`
	IgnoredAt time.Time  `yaml:"ignored_at" json:"ignored_at"`
	IgnoredBy string     `yaml:"ignored_by,omitempty" json:"ignored_by,omitempty"`
	Expires   *time.Time `yaml:"expires,omitempty" json:"expires,omitempty"`
}

// Active reports whether the entry still suppresses its item at now.
func (e IgnoreEntry) Active(now time.Time) bool {
	return e.Expires == nil || now.Before(*e.Expires)
}

// IgnoreSet is the set of active entries keyed by item id.
type IgnoreSet map[string]IgnoreEntry

// NewIgnoreSet keeps active entries only. When an id appears more than once
// the most recent entry wins, so duplicate records never change filtering.
func NewIgnoreSet(entries []IgnoreEntry, now time.Time) IgnoreSet {
	set := make(IgnoreSet, len(entries))
	for _, e := range entries {
		if !e.Active(now) {
			continue
		}
		id := NormalizeID(e.ID)
		if prev, ok := set[id]; ok && prev.IgnoredAt.After(e.IgnoredAt) {
			continue
		}
		set[id] = e
	}
	return set
}

// Has reports whether id is suppressed.
func (s IgnoreSet) Has(id string) bool {
	_, ok := s[NormalizeID(id)]
	return ok
}

var daysPattern = regexp.MustCompile(`^([0-9]+)d$`)

// ParseExpiry converts user input into an absolute expiry time. Accepted
// forms: RFC3339 timestamps, dates (end of that day, UTC), Go durations
// ("36h") and day counts ("14d"), the last two relative to now.
func ParseExpiry(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty expiry")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC), nil
	}

	if m := daysPattern.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[1])
		return now.UTC().AddDate(0, 0, days), nil
	}

	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return now.UTC().Add(d), nil
	}

	return time.Time{}, fmt.Errorf("invalid expiry %q (expected RFC3339, YYYY-MM-DD, 14d or 36h)", s)
}
