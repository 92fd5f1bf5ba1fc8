package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/todo"
)

// Versions reports sites running an outdated Drupal core.
type Versions struct{}

func (Versions) Category() todo.Category { return todo.CategoryVersion }

type outdatedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Latest  string `json:"latest"`
}

func (Versions) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	seq := todo.NewIDSeq(todo.CategoryVersion)
	var items []todo.Item

	err := eachSite(ctx, env, func(site config.Site) error {
		if !dirExists(site.Directory) || !hasComposerLock(site.Directory) {
			return nil
		}

		data, err := composerJSON(ctx, env, site.Directory,
			"outdated", "drupal/core*", "--direct", "--locked", "--format=json")
		if err != nil {
			return err
		}

		pkg, ok, err := parseOutdatedCore(data)
		if err != nil || !ok {
			return err
		}

		priority, ok := versionPriority(pkg.Version, pkg.Latest)
		if !ok {
			return nil
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryVersion,
			Priority:    priority,
			Title:       fmt.Sprintf("Drupal core %s available for %s (running %s)", pkg.Latest, site.Name, pkg.Version),
			Description: fmt.Sprintf("%s can be updated from %s to %s", pkg.Name, pkg.Version, pkg.Latest),
			Site:        site.Name,
			Action:      "pl update " + site.Name,
		})
		return nil
	})

	return items, err
}

// parseOutdatedCore picks the core package out of `composer outdated`
// output. Locked mode reports under "locked", installed mode under
// "installed".
func parseOutdatedCore(data []byte) (outdatedPackage, bool, error) {
	var doc struct {
		Locked    []outdatedPackage `json:"locked"`
		Installed []outdatedPackage `json:"installed"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return outdatedPackage{}, false, fmt.Errorf("decode outdated: %w", err)
	}

	pkgs := doc.Locked
	if len(pkgs) == 0 {
		pkgs = doc.Installed
	}

	var found *outdatedPackage
	for i := range pkgs {
		switch pkgs[i].Name {
		case "drupal/core-recommended":
			return pkgs[i], true, nil
		case "drupal/core":
			found = &pkgs[i]
		}
	}
	if found == nil {
		return outdatedPackage{}, false, nil
	}
	return *found, true, nil
}

// versionPriority compares composer versions. A new major or minor release
// is medium priority, a patch release low. Non-semver versions (dev
// branches) are ignored.
func versionPriority(current, latest string) (todo.Priority, bool) {
	cur, lat := canonicalVersion(current), canonicalVersion(latest)
	if !semver.IsValid(cur) || !semver.IsValid(lat) || semver.Compare(lat, cur) <= 0 {
		return "", false
	}
	if semver.MajorMinor(lat) != semver.MajorMinor(cur) {
		return todo.PriorityMedium, true
	}
	return todo.PriorityLow, true
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
