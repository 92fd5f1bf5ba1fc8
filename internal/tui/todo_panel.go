package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/pl/internal/core/styles"
	"github.com/colonyops/pl/internal/core/todo"
)

// TodoList is the scrollable item list of the browser.
type TodoList struct {
	items  []todo.ViewItem
	cursor int
	scroll int // first visible row index
	height int
}

// SetItems replaces the list contents. The cursor stays on the previously
// selected id when it is still present.
func (l *TodoList) SetItems(items []todo.ViewItem) {
	prev, hadPrev := l.Selected()
	l.items = items

	l.cursor = 0
	if hadPrev {
		for i, it := range items {
			if it.ID == prev.ID {
				l.cursor = i
				break
			}
		}
	}
	l.clamp()
}

// SetHeight sets the number of visible rows.
func (l *TodoList) SetHeight(h int) {
	l.height = max(h, 1)
	l.ensureVisible()
}

// Len returns the number of items.
func (l *TodoList) Len() int {
	return len(l.items)
}

// Move shifts the cursor by delta, stopping at either end.
func (l *TodoList) Move(delta int) {
	l.cursor += delta
	l.clamp()
}

// Selected returns the item under the cursor.
func (l *TodoList) Selected() (todo.ViewItem, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return todo.ViewItem{}, false
	}
	return l.items[l.cursor], true
}

func (l *TodoList) clamp() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *TodoList) ensureVisible() {
	if l.height <= 0 {
		return
	}
	if l.cursor < l.scroll {
		l.scroll = l.cursor
	}
	if l.cursor >= l.scroll+l.height {
		l.scroll = l.cursor - l.height + 1
	}
	if maxScroll := max(len(l.items)-l.height, 0); l.scroll > maxScroll {
		l.scroll = maxScroll
	}
}

// View renders the visible rows, each truncated to width.
func (l *TodoList) View(width int) string {
	if len(l.items) == 0 {
		return styles.TextMutedStyle.Render("Nothing to do.")
	}

	end := len(l.items)
	if l.height > 0 {
		end = min(l.scroll+l.height, len(l.items))
	}

	rows := make([]string, 0, end-l.scroll)
	for i := l.scroll; i < end; i++ {
		rows = append(rows, l.renderRow(l.items[i], i == l.cursor, width))
	}
	return strings.Join(rows, "\n")
}

func (l *TodoList) renderRow(it todo.ViewItem, selected bool, width int) string {
	icon := styles.PriorityIcon(it.Priority)
	if it.Ignored {
		icon = styles.IconIgnored
	}

	title := it.Title
	if it.Site != "" {
		title = fmt.Sprintf("%s  [%s]", title, it.Site)
	}

	plain := fmt.Sprintf(" %s %-8s %s", icon, it.ID, title)
	if width > 0 && lipgloss.Width(plain) > width {
		plain = truncate(plain, width)
	}

	switch {
	case selected:
		return styles.SelectedRowStyle.Width(max(width, 0)).Render(plain)
	case it.Ignored:
		return styles.IgnoredRowStyle.Render(plain)
	default:
		return styles.PriorityStyle(it.Priority).Render(plain)
	}
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
