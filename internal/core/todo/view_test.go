package todo

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fixtureItems() []Item {
	return []Item{
		{ID: "TOK-001", Category: CategoryToken, Priority: PriorityMedium, Title: "linode token stale"},
		{ID: "BAK-001", Category: CategoryBackup, Priority: PriorityHigh, Title: "no backup", Site: "shop"},
		{ID: "SEC-001", Category: CategorySecurity, Priority: PriorityHigh, Title: "Security update available", Site: "mysite"},
		{ID: "GWK-001", Category: CategoryGitWork, Priority: PriorityLow, Title: "uncommitted", Site: "mysite"},
		{ID: "BAK-002", Category: CategoryBackup, Priority: PriorityHigh, Title: "no backup", Site: "mysite"},
		{ID: "SEC-002", Category: CategorySecurity, Priority: PriorityMedium, Title: "advisory", Site: "shop"},
		{ID: "TST-001", Category: CategoryTestSite, Priority: PriorityLow, Title: "old test site", Site: "shop-test"},
	}
}

func ids(v View) []string {
	out := make([]string, len(v.Items))
	for i, it := range v.Items {
		out[i] = it.ID
	}
	return out
}

func TestBuildView_SortsByPriorityThenCategory(t *testing.T) {
	v := BuildView(Snapshot{Timestamp: t0, Items: fixtureItems()}, nil, ViewOptions{})

	assert.Equal(t, []string{
		"BAK-001", "BAK-002", "SEC-001", // high: BAK before SEC, discovery order kept
		"TOK-001", "SEC-002", // medium
		"TST-001", "GWK-001", // low
	}, ids(v))
	assert.Equal(t, Summary{Total: 7, High: 3, Medium: 2, Low: 2}, v.Summary)
}

func TestBuildView_DeterministicAcrossInputOrder(t *testing.T) {
	base := fixtureItems()
	want, err := json.Marshal(BuildView(Snapshot{Timestamp: t0, Items: base}, nil, ViewOptions{}))
	require.NoError(t, err)

	// Shuffle whole categories, keeping the within-category order a merge
	// by category produces.
	byCat := map[Category][]Item{}
	var order []Category
	for _, it := range base {
		if _, ok := byCat[it.Category]; !ok {
			order = append(order, it.Category)
		}
		byCat[it.Category] = append(byCat[it.Category], it)
	}

	r := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var items []Item
		for _, c := range order {
			items = append(items, byCat[c]...)
		}
		got, err := json.Marshal(BuildView(Snapshot{Timestamp: t0, Items: items}, nil, ViewOptions{}))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}
}

func TestFilter_Conjunction(t *testing.T) {
	items := fixtureItems()

	priorities := []Priority{"", PriorityHigh, PriorityMedium, PriorityLow}
	cats := []string{"", "sec", "B", "TOK", "ss"}
	sites := []string{"", "mysite", "shop"}

	for _, p := range priorities {
		for _, c := range cats {
			for _, s := range sites {
				both := Filter{Priority: p, Category: c, Site: s}
				for _, it := range items {
					separate := Filter{Priority: p}.Match(it) &&
						Filter{Category: c}.Match(it) &&
						Filter{Site: s}.Match(it)
					assert.Equal(t, separate, both.Match(it), "filter %+v item %s", both, it.ID)
				}
			}
		}
	}
}

func TestBuildView_Filters(t *testing.T) {
	snap := Snapshot{Timestamp: t0, Items: fixtureItems()}

	v := BuildView(snap, nil, ViewOptions{Filter: Filter{Priority: PriorityHigh, Category: "sec"}})
	assert.Equal(t, []string{"SEC-001"}, ids(v))

	v = BuildView(snap, nil, ViewOptions{Filter: Filter{Site: "shop"}})
	assert.Equal(t, []string{"BAK-001", "SEC-002"}, ids(v), "site match is exact")

	v = BuildView(snap, nil, ViewOptions{Filter: Filter{Site: "shop-test"}})
	assert.Equal(t, []string{"TST-001"}, ids(v))
}

func TestBuildView_LeavesSnapshotUntouched(t *testing.T) {
	items := fixtureItems()
	before := slices.Clone(items)

	_ = BuildView(Snapshot{Timestamp: t0, Items: items}, nil, ViewOptions{})
	assert.Equal(t, before, items)
}

func TestBuildView_IgnoreSuppression(t *testing.T) {
	snap := Snapshot{Timestamp: t0, Items: []Item{
		{ID: "SEC-001", Category: CategorySecurity, Priority: PriorityHigh, Title: "Security update available", Site: "mysite"},
	}}

	v := BuildView(snap, nil, ViewOptions{})
	require.Len(t, v.Items, 1)
	assert.Equal(t, Summary{Total: 1, High: 1}, v.Summary)

	entry := IgnoreEntry{ID: "SEC-001", Reason: "scheduled for next week", IgnoredAt: t0}
	once := NewIgnoreSet([]IgnoreEntry{entry}, t0)
	twice := NewIgnoreSet([]IgnoreEntry{entry, entry}, t0)

	v = BuildView(snap, once, ViewOptions{})
	assert.Empty(t, v.Items)
	assert.Equal(t, Summary{}, v.Summary)
	assert.Equal(t, v, BuildView(snap, twice, ViewOptions{}), "duplicate ignores do not change the view")

	v = BuildView(snap, once, ViewOptions{ShowIgnored: true})
	require.Len(t, v.Items, 1)
	assert.True(t, v.Items[0].Ignored)
	assert.Equal(t, "scheduled for next week", v.Items[0].IgnoreReason)
}

func TestBuildView_JSONShape(t *testing.T) {
	snap := Snapshot{Timestamp: t0, Items: []Item{
		{ID: "SEC-001", Category: CategorySecurity, Priority: PriorityHigh, Title: "Security update available", Site: "mysite", Action: "pl security update mysite"},
	}}

	data, err := json.Marshal(BuildView(snap, nil, ViewOptions{}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"timestamp": "2026-06-01T12:00:00Z",
		"summary": {"total": 1, "high": 1, "medium": 0, "low": 0},
		"items": [{
			"id": "SEC-001", "category": "SEC", "priority": "high",
			"title": "Security update available", "description": "",
			"site": "mysite", "action": "pl security update mysite"
		}]
	}`, string(data))

	empty, err := json.Marshal(BuildView(Snapshot{Timestamp: t0}, nil, ViewOptions{}))
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"items":[]`)
}

func TestSnapshot_Fresh(t *testing.T) {
	snap := Snapshot{Timestamp: t0}
	ttl := 300 * time.Second

	assert.True(t, snap.Fresh(t0.Add(60*time.Second), ttl))
	assert.False(t, snap.Fresh(t0.Add(300*time.Second), ttl))
	assert.False(t, snap.Fresh(t0.Add(-time.Minute), ttl), "snapshots from the future are stale")
	assert.False(t, Snapshot{}.Fresh(t0, ttl))
	assert.False(t, snap.Fresh(t0, 0))
}
