package pl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/confstore"
	"github.com/colonyops/pl/internal/core/todo"
)

func newIgnoreService(t *testing.T, src string) (*IgnoreService, *confstore.Memory, *clock) {
	t.Helper()

	prev := currentUser
	currentUser = func() string { return "ops" }
	t.Cleanup(func() { currentUser = prev })

	store, err := confstore.NewMemory(src)
	require.NoError(t, err)

	c := newClock(t0)
	svc := NewIgnoreService(store)
	svc.now = c.Now
	return svc, store, c
}

func TestIgnoreService_Add(t *testing.T) {
	svc, _, _ := newIgnoreService(t, "")

	entry, err := svc.Add(" sec-001 ", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "SEC-001", entry.ID)
	assert.Equal(t, todo.ReasonIgnored, entry.Reason)
	assert.Equal(t, "ops", entry.IgnoredBy)
	assert.Equal(t, t0, entry.IgnoredAt)
	assert.Nil(t, entry.Expires)

	ignored, err := svc.IsIgnored("SEC-001")
	require.NoError(t, err)
	assert.True(t, ignored)
}

func TestIgnoreService_AddIsIdempotent(t *testing.T) {
	svc, _, c := newIgnoreService(t, "")

	_, err := svc.Add("SEC-001", "first", nil)
	require.NoError(t, err)
	c.Advance(time.Minute)
	_, err = svc.Add("SEC-001", "second", nil)
	require.NoError(t, err)

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Reason)

	h := newHarness(t, testConfig(), secProvider())
	h.ignores = svc
	h.agg = NewAggregator(h.registry, svc)

	view, err := h.agg.View(context.Background(), ViewOptions{})
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestIgnoreService_ToleratesStoredDuplicates(t *testing.T) {
	svc, _, _ := newIgnoreService(t, `
settings:
  todo:
    ignored:
      - id: SEC-001
        reason: one
        ignored_at: 2026-03-01T00:00:00Z
      - id: SEC-001
        reason: two
        ignored_at: 2026-03-02T00:00:00Z
`)

	set, err := svc.Active()
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "two", set["SEC-001"].Reason)
}

func TestIgnoreService_RoundTrip(t *testing.T) {
	svc, _, _ := newIgnoreService(t, "")

	_, err := svc.Resolve("BAK-002")
	require.NoError(t, err)

	ignored, err := svc.IsIgnored("BAK-002")
	require.NoError(t, err)
	assert.True(t, ignored)

	n, err := svc.Remove("bak-002")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ignored, err = svc.IsIgnored("BAK-002")
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestIgnoreService_RemoveMissing(t *testing.T) {
	svc, store, _ := newIgnoreService(t, "settings:\n  todo:\n    enabled: true\n")
	before := store.YAML()

	n, err := svc.Remove("SEC-404")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, before, store.YAML())
}

func TestIgnoreService_InvalidID(t *testing.T) {
	svc, _, _ := newIgnoreService(t, "")

	_, err := svc.Add("not-an-id", "", nil)
	require.ErrorIs(t, err, todo.ErrInvalidID)

	_, err = svc.Remove("XYZ-001")
	require.ErrorIs(t, err, todo.ErrInvalidID)
}

func TestIgnoreService_Expiry(t *testing.T) {
	svc, _, c := newIgnoreService(t, "")

	past := t0.Add(-time.Hour)
	_, err := svc.Add("SEC-001", "", &past)
	require.Error(t, err)

	expires := t0.Add(24 * time.Hour)
	_, err = svc.Add("SEC-001", "until tomorrow", &expires)
	require.NoError(t, err)

	ignored, err := svc.IsIgnored("SEC-001")
	require.NoError(t, err)
	assert.True(t, ignored)

	c.Advance(25 * time.Hour)

	ignored, err = svc.IsIgnored("SEC-001")
	require.NoError(t, err)
	assert.False(t, ignored)

	pruned, err := svc.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	entries, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIgnoreService_WriteFailure(t *testing.T) {
	svc, store, _ := newIgnoreService(t, "")
	store.WriteErr = errors.New("permission denied")

	_, err := svc.Add("SEC-001", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	entries, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
