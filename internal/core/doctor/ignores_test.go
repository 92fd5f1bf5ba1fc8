package doctor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/todo"
)

var checkNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ignoreEntries() []todo.IgnoreEntry {
	past := checkNow.Add(-time.Hour)
	future := checkNow.Add(time.Hour)
	return []todo.IgnoreEntry{
		{ID: "SEC-001", IgnoredAt: checkNow},
		{ID: "BAK-001", IgnoredAt: checkNow, Expires: &past},
		{ID: "TOK-001", IgnoredAt: checkNow, Expires: &future},
		{ID: "tok-001", IgnoredAt: checkNow},
	}
}

func TestIgnoreCheck_ReportsExpiredAndDuplicates(t *testing.T) {
	result := NewIgnoreCheck(ignoreEntries(), checkNow, nil, false).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, "4 stored", result.Items[0].Detail)

	assert.Equal(t, "duplicates", result.Items[1].Label)
	assert.Equal(t, StatusWarn, result.Items[1].Status)

	assert.Equal(t, "expired", result.Items[2].Label)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
	assert.True(t, result.Items[2].Fixable)
	assert.Equal(t, 1, NewReport([]Result{result}).Fixable)
}

func TestIgnoreCheck_Autofix(t *testing.T) {
	called := 0
	prune := func() (int, error) {
		called++
		return 1, nil
	}

	result := NewIgnoreCheck(ignoreEntries(), checkNow, prune, true).Run(context.Background())

	assert.Equal(t, 1, called)
	last := result.Items[len(result.Items)-1]
	assert.Equal(t, StatusPass, last.Status)
	assert.Equal(t, "pruned 1 expired entries", last.Detail)
}

func TestIgnoreCheck_AutofixFailure(t *testing.T) {
	prune := func() (int, error) { return 0, errors.New("read-only file system") }

	result := NewIgnoreCheck(ignoreEntries(), checkNow, prune, true).Run(context.Background())

	last := result.Items[len(result.Items)-1]
	assert.Equal(t, StatusFail, last.Status)
	assert.Contains(t, last.Detail, "read-only")
}

func TestIgnoreCheck_Clean(t *testing.T) {
	result := NewIgnoreCheck(nil, checkNow, nil, false).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
}
