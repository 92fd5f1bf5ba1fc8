package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Security reports sites with packages affected by published security
// advisories, one item per site.
type Security struct{}

func (Security) Category() todo.Category { return todo.CategorySecurity }

type advisory struct {
	AdvisoryID string `json:"advisoryId"`
	Package    string `json:"packageName"`
	Title      string `json:"title"`
	CVE        string `json:"cve"`
}

func (Security) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	seq := todo.NewIDSeq(todo.CategorySecurity)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if !dirExists(site.Directory) || !hasComposerLock(site.Directory) {
			return nil
		}

		data, err := composerJSON(ctx, env, site.Directory, "audit", "--locked", "--format=json")
		if err != nil {
			return err
		}

		advisories, err := parseAudit(data)
		if err != nil {
			return err
		}
		if len(advisories) == 0 {
			return nil
		}

		packages := map[string]bool{}
		for _, adv := range advisories {
			packages[adv.Package] = true
		}
		names := make([]string, 0, len(packages))
		for name := range packages {
			names = append(names, name)
		}
		sort.Strings(names)

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategorySecurity,
			Priority:    todo.PriorityHigh,
			Title:       fmt.Sprintf("Security update available for %s", site.Name),
			Description: fmt.Sprintf("%d advisories affecting %s", len(advisories), strings.Join(names, ", ")),
			Site:        site.Name,
			Action:      "pl security update " + site.Name,
		})
		return nil
	})

	return items, err
}

// parseAudit decodes `composer audit --format=json`. Advisories are keyed by
// package name; composer emits an empty array instead of an empty object
// when there are none.
func parseAudit(data []byte) ([]advisory, error) {
	var doc struct {
		Advisories json.RawMessage `json:"advisories"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode audit: %w", err)
	}

	raw := strings.TrimSpace(string(doc.Advisories))
	if raw == "" || raw == "null" || strings.HasPrefix(raw, "[") {
		var list []advisory
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal(doc.Advisories, &list); err != nil {
				return nil, fmt.Errorf("decode advisories: %w", err)
			}
		}
		return list, nil
	}

	var byPackage map[string]json.RawMessage
	if err := json.Unmarshal(doc.Advisories, &byPackage); err != nil {
		return nil, fmt.Errorf("decode advisories: %w", err)
	}

	pkgs := make([]string, 0, len(byPackage))
	for pkg := range byPackage {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var out []advisory
	for _, pkg := range pkgs {
		entries, err := decodeAdvisoryEntries(byPackage[pkg])
		if err != nil {
			return nil, fmt.Errorf("decode advisories for %s: %w", pkg, err)
		}
		for _, adv := range entries {
			if adv.Package == "" {
				adv.Package = pkg
			}
			out = append(out, adv)
		}
	}
	return out, nil
}

// decodeAdvisoryEntries accepts both a list and an index-keyed object, which
// composer produces after filtering ignored advisories.
func decodeAdvisoryEntries(raw json.RawMessage) ([]advisory, error) {
	var list []advisory
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var keyed map[string]advisory
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		list = append(list, keyed[k])
	}
	return list, nil
}
