package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/pkg/tuitest"
)

func listItems(n int) []todo.ViewItem {
	out := make([]todo.ViewItem, n)
	for i := range out {
		out[i] = todo.ViewItem{Item: todo.Item{
			ID:       todo.FormatID(todo.CategoryBackup, i+1),
			Category: todo.CategoryBackup,
			Priority: todo.PriorityMedium,
			Title:    fmt.Sprintf("item %d", i+1),
		}}
	}
	return out
}

func TestTodoList_Empty(t *testing.T) {
	var l TodoList
	_, ok := l.Selected()
	assert.False(t, ok)
	assert.Contains(t, tuitest.StripANSI(l.View(80)), "Nothing to do.")

	l.Move(1)
	_, ok = l.Selected()
	assert.False(t, ok)
}

func TestTodoList_ScrollFollowsCursor(t *testing.T) {
	var l TodoList
	l.SetHeight(3)
	l.SetItems(listItems(10))

	for range 5 {
		l.Move(1)
	}

	it, ok := l.Selected()
	assert.True(t, ok)
	assert.Equal(t, "BAK-006", it.ID)

	out := tuitest.StripANSI(l.View(80))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "BAK-006")
	assert.NotContains(t, out, "BAK-001")
}

func TestTodoList_SetItemsKeepsSelection(t *testing.T) {
	var l TodoList
	items := listItems(4)
	l.SetItems(items)
	l.Move(2)

	// BAK-001 disappears; the cursor follows BAK-003.
	l.SetItems(items[1:])
	it, _ := l.Selected()
	assert.Equal(t, "BAK-003", it.ID)

	// Selected id gone: cursor is clamped.
	l.SetItems(items[:1])
	it, _ = l.Selected()
	assert.Equal(t, "BAK-001", it.ID)
}

func TestTodoList_IgnoredMarker(t *testing.T) {
	var l TodoList
	items := listItems(2)
	items[1].Ignored = true
	l.SetItems(items)

	out := tuitest.StripANSI(l.View(80))
	assert.Contains(t, out, "⊘ BAK-002")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc…", truncate("abcdefgh", 4))
	assert.Equal(t, "…", truncate("abcdefgh", 1))
}
