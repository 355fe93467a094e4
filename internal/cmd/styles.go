package cmd

import "github.com/charmbracelet/lipgloss"

var (
	completeColor = lipgloss.Color("#10B981") // Green
	pendingColor  = lipgloss.Color("#9CA3AF") // Gray
	nextColor     = lipgloss.Color("#F59E0B") // Amber
	titleColor    = lipgloss.Color("#A78BFA") // Purple

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(titleColor)

	completeStyle = lipgloss.NewStyle().Foreground(completeColor)
	pendingStyle  = lipgloss.NewStyle().Foreground(pendingColor)
	nextStyle     = lipgloss.NewStyle().Foreground(nextColor).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(pendingColor).Italic(true)
)
