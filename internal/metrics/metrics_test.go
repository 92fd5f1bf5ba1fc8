package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/checks"
	"github.com/colonyops/pl/internal/core/todo"
)

func sampleView() todo.View {
	return todo.View{
		Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Items: []todo.ViewItem{
			{Item: todo.Item{ID: "SEC-001", Category: todo.CategorySecurity, Priority: todo.PriorityHigh, Title: "a"}},
			{Item: todo.Item{ID: "SEC-002", Category: todo.CategorySecurity, Priority: todo.PriorityHigh, Title: "b"}},
			{Item: todo.Item{ID: "TOK-001", Category: todo.CategoryToken, Priority: todo.PriorityLow, Title: "c"}},
			{Item: todo.Item{ID: "BAK-001", Category: todo.CategoryBackup, Priority: todo.PriorityHigh, Title: "d"}, Ignored: true},
		},
	}
}

func TestCollect(t *testing.T) {
	run := Run{
		Providers: []checks.Stat{
			{Category: todo.CategorySecurity, Duration: 1500 * time.Millisecond, Items: 2},
			{Category: todo.CategoryGitLab, Duration: 30 * time.Second, Err: errors.New("timed out")},
		},
	}

	reg := Collect(sampleView(), run)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			values[key] = m.GetGauge().GetValue()
		}
	}

	assert.Equal(t, 2.0, values["pl_todo_items/SEC/high"])
	assert.Equal(t, 1.0, values["pl_todo_items/TOK/low"])
	assert.Equal(t, 0.0, values["pl_todo_items/BAK/high"], "ignored items are not counted as open")
	assert.Equal(t, 1.0, values["pl_todo_ignored_items/BAK"])
	assert.Equal(t, 1.5, values["pl_todo_provider_duration_seconds/SEC"])
	assert.Equal(t, 1.0, values["pl_todo_provider_up/SEC"])
	assert.Equal(t, 0.0, values["pl_todo_provider_up/GIT"])
	assert.Equal(t, float64(sampleView().Timestamp.Unix()), values["pl_todo_last_run_timestamp_seconds"])
	assert.Equal(t, 0.0, values["pl_todo_cached"])

	// Every category/priority pair is exported, even when zero.
	count, err := testutil.GatherAndCount(reg, "pl_todo_items")
	require.NoError(t, err)
	assert.Equal(t, len(todo.Categories())*len(todo.Priorities()), count)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pl_todo.prom")

	require.NoError(t, WriteTextfile(path, sampleView(), Run{Cached: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `pl_todo_items{category="SEC",priority="high"} 2`)
	assert.Contains(t, text, "pl_todo_cached 1")
	assert.Contains(t, text, "# HELP pl_todo_items Number of open todo items.")
}
