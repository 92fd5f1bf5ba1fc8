package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/pl/internal/core/styles"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.list.View(m.width))
	b.WriteString("\n\n")

	if detail := m.detail(); detail != "" {
		b.WriteString(detail)
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) header() string {
	title := styles.TextPrimaryBoldStyle.Render("pl todo")

	s := m.view.Summary
	counts := fmt.Sprintf("%d items  %s  %s  %s",
		s.Total,
		styles.PriorityStyle("high").Render(fmt.Sprintf("%d high", s.High)),
		styles.PriorityStyle("medium").Render(fmt.Sprintf("%d medium", s.Medium)),
		styles.PriorityStyle("low").Render(fmt.Sprintf("%d low", s.Low)),
	)

	parts := []string{title, counts}
	if !m.view.Timestamp.IsZero() {
		parts = append(parts, styles.TextMutedStyle.Render("as of "+m.view.Timestamp.Local().Format("2006-01-02 15:04")))
	}
	if m.showIgnored {
		parts = append(parts, styles.TextWarningStyle.Render("(showing ignored)"))
	}
	if m.loading {
		parts = append(parts, m.spinner.View())
	}

	return strings.Join(parts, "  ")
}

func (m Model) detail() string {
	it, ok := m.list.Selected()
	if !ok {
		return ""
	}

	lines := []string{
		styles.TextForegroundBoldStyle.Render(it.Title),
	}
	if it.Description != "" {
		lines = append(lines, it.Description)
	}

	meta := styles.CategoryCodeStyle.Render(it.Category.Label())
	if it.Site != "" {
		meta += styles.TextMutedStyle.Render("  site: ") + it.Site
	}
	lines = append(lines, meta)

	if it.Action != "" {
		lines = append(lines, styles.TextMutedStyle.Render("action: ")+it.Action)
	}
	if it.Ignored {
		lines = append(lines, styles.TextWarningStyle.Render("ignored: "+it.IgnoreReason))
	}

	box := styles.DetailBoxStyle
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) statusLine() string {
	switch {
	case m.prompting:
		return m.prompt.View()
	case m.err != nil:
		return styles.TextErrorStyle.Render("error: " + m.err.Error())
	case m.status != "":
		return styles.StatusBarStyle.Render(m.status)
	}
	return ""
}
