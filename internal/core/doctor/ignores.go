package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/pl/internal/core/todo"
)

// IgnoreCheck reports expired entries left in the ignore list. With autofix
// they are pruned.
type IgnoreCheck struct {
	entries []todo.IgnoreEntry
	now     time.Time
	prune   func() (int, error)
	autofix bool
}

// NewIgnoreCheck creates an ignore list check over entries.
func NewIgnoreCheck(entries []todo.IgnoreEntry, now time.Time, prune func() (int, error), autofix bool) *IgnoreCheck {
	return &IgnoreCheck{entries: entries, now: now, prune: prune, autofix: autofix}
}

func (c *IgnoreCheck) Name() string {
	return "Ignore List"
}

func (c *IgnoreCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	expired := 0
	seen := map[string]int{}
	for _, e := range c.entries {
		if !e.Active(c.now) {
			expired++
		}
		seen[todo.NormalizeID(e.ID)]++
	}

	duplicates := 0
	for _, n := range seen {
		if n > 1 {
			duplicates += n - 1
		}
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "entries",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d stored", len(c.entries)),
	})

	if duplicates > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "duplicates",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d duplicate entries (re-run ignore for the id to collapse them)", duplicates),
		})
	}

	if expired == 0 {
		return result
	}

	if c.autofix && c.prune != nil {
		n, err := c.prune()
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "expired",
				Status: StatusFail,
				Detail: fmt.Sprintf("prune failed: %v", err),
			})
			return result
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "expired",
			Status: StatusPass,
			Detail: fmt.Sprintf("pruned %d expired entries", n),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:   "expired",
		Status:  StatusWarn,
		Detail:  fmt.Sprintf("%d expired entries", expired),
		Fixable: true,
	})
	return result
}
