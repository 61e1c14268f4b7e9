package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#FF5F87")
	colorSuccess = lipgloss.Color("#5FD787")
	colorError   = lipgloss.Color("#FF5F5F")
	colorMuted   = lipgloss.Color("#808080")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	stageStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	urlStyle     = lipgloss.NewStyle().Underline(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)
