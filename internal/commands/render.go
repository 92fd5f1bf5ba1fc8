package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/colonyops/pl/internal/core/styles"
	"github.com/colonyops/pl/internal/core/todo"
)

// quietLine is the stable one-line summary printed by `todo check --quiet`.
func quietLine(v todo.View) string {
	s := v.Summary
	return fmt.Sprintf("pl todo: %d items (%d high, %d medium, %d low)", s.Total, s.High, s.Medium, s.Low)
}

// renderList prints the view grouped by priority.
func renderList(w io.Writer, v todo.View) {
	if len(v.Items) == 0 {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render(styles.IconPass+" Nothing to do."))
		return
	}

	for _, p := range todo.Priorities() {
		items := v.ByPriority(p)
		if len(items) == 0 {
			continue
		}

		header := fmt.Sprintf("%s %s (%d)", styles.PriorityIcon(p), strings.ToUpper(string(p)), len(items))
		_, _ = fmt.Fprintln(w, styles.PriorityStyle(p).Render(header))

		for _, it := range items {
			title := it.Title
			if it.Site != "" {
				title += styles.TextMutedStyle.Render(" (" + it.Site + ")")
			}
			id := fmt.Sprintf("%-8s", it.ID)
			if it.Ignored {
				id = styles.IgnoredRowStyle.Render(id)
			} else {
				id = styles.CategoryCodeStyle.Render(id)
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", id, title)

			if it.Description != "" {
				_, _ = fmt.Fprintf(w, "           %s\n", styles.TextMutedStyle.Render(it.Description))
			}
			if it.Action != "" {
				_, _ = fmt.Fprintf(w, "           %s %s\n", styles.TextMutedStyle.Render("→"), it.Action)
			}
			if it.Ignored {
				_, _ = fmt.Fprintf(w, "           %s\n", styles.TextWarningStyle.Render("ignored: "+it.IgnoreReason))
			}
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render(quietLine(v)))
}

// renderDigest prints a plain-text summary grouped by category, suitable for
// mail or chat.
func renderDigest(w io.Writer, v todo.View) {
	ts := v.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, _ = fmt.Fprintf(w, "pl todo digest, %s\n", ts.UTC().Format("2006-01-02 15:04 MST"))
	_, _ = fmt.Fprintln(w, quietLine(v))

	byCat := map[todo.Category][]todo.ViewItem{}
	for _, it := range v.Items {
		byCat[it.Category] = append(byCat[it.Category], it)
	}

	for _, cat := range todo.Categories() {
		items := byCat[cat]
		if len(items) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s (%d)\n", cat.Label(), len(items))
		for _, it := range items {
			line := fmt.Sprintf("  - [%s] %s: %s", it.Priority, it.ID, it.Title)
			if it.Ignored {
				line += " (ignored)"
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

// renderIgnored prints stored ignore entries.
func renderIgnored(w io.Writer, entries []todo.IgnoreEntry, now time.Time) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("No ignored items."))
		return
	}

	for _, e := range entries {
		state := ""
		switch {
		case !e.Active(now):
			state = styles.TextMutedStyle.Render(" [expired]")
		case e.Expires != nil:
			state = styles.TextMutedStyle.Render(" until " + e.Expires.UTC().Format(time.RFC3339))
		}

		by := ""
		if e.IgnoredBy != "" {
			by = " by " + e.IgnoredBy
		}

		_, _ = fmt.Fprintf(w, "%-8s %s%s\n", e.ID, e.Reason, state)
		_, _ = fmt.Fprintf(w, "         %s\n", styles.TextMutedStyle.Render(e.IgnoredAt.UTC().Format(time.RFC3339)+by))
	}
}
