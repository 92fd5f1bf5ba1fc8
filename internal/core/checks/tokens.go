package checks

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// DefaultTokens are always checked, even before their first rotation is
// recorded.
var DefaultTokens = []string{"linode", "cloudflare", "gitlab", "b2"}

// Tokens reports API tokens overdue for rotation.
type Tokens struct{}

func (Tokens) Category() todo.Category { return todo.CategoryToken }

func (Tokens) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	tcfg := env.Config.Todo
	rotationDays := tcfg.Thresholds.TokenRotationDays
	if rotationDays <= 0 {
		return nil, nil
	}

	now := env.now()
	seq := todo.NewIDSeq(todo.CategoryToken)
	var items []todo.Item

	for _, name := range tokenNames(tcfg.Tokens) {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		action := "pl todo token " + name
		tok, ok := tcfg.Tokens[name]
		if !ok || tok.LastRotated.IsZero() {
			items = append(items, todo.Item{
				ID:          seq.Next(),
				Category:    todo.CategoryToken,
				Priority:    todo.PriorityLow,
				Title:       fmt.Sprintf("No rotation recorded for %s token", name),
				Description: "Record the last rotation so it can be tracked",
				Action:      action,
			})
			continue
		}

		age := daysBetween(tok.LastRotated.Time, now)
		if age < rotationDays {
			continue
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryToken,
			Priority:    todo.PriorityMedium,
			Title:       fmt.Sprintf("Rotate %s token (%d days old)", name, age),
			Description: fmt.Sprintf("Tokens should be rotated every %d days", rotationDays),
			Action:      action,
		})
	}

	return items, nil
}

// tokenNames returns the default tokens in their fixed order followed by any
// additional configured tokens sorted by name.
func tokenNames(configured map[string]config.Token) []string {
	names := append([]string(nil), DefaultTokens...)

	var extra []string
	for name := range configured {
		if !slices.Contains(DefaultTokens, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return append(names, extra...)
}
