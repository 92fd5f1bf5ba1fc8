// Package styles provides shared lipgloss styles for CLI and TUI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/pl/internal/core/todo"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Text styles used by command output.
var (
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundStyle     lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style
)

// TUI styles.
var (
	TitleStyle        lipgloss.Style
	HelpStyle         lipgloss.Style
	SelectedRowStyle  lipgloss.Style
	IgnoredRowStyle   lipgloss.Style
	DetailBoxStyle    lipgloss.Style
	ModalStyle        lipgloss.Style
	ModalTitleStyle   lipgloss.Style
	StatusBarStyle    lipgloss.Style
	CategoryCodeStyle lipgloss.Style
)

var priorityStyles map[todo.Priority]lipgloss.Style

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = TextPrimaryStyle.Bold(true)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TextForegroundBoldStyle = TextForegroundStyle.Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		MarginBottom(1)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	SelectedRowStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Foreground(p.Foreground).
		Bold(true)
	IgnoredRowStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Strikethrough(true)
	DetailBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)
	CategoryCodeStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)

	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.PriorityHigh:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		todo.PriorityMedium: lipgloss.NewStyle().Foreground(p.Warning),
		todo.PriorityLow:    lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// PriorityStyle returns the style for items of priority p.
func PriorityStyle(p todo.Priority) lipgloss.Style {
	if s, ok := priorityStyles[p]; ok {
		return s
	}
	return TextForegroundStyle
}

// PriorityIcon is the marker printed in front of items of priority p.
func PriorityIcon(p todo.Priority) string {
	switch p {
	case todo.PriorityHigh:
		return IconHigh
	case todo.PriorityMedium:
		return IconMedium
	default:
		return IconLow
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
