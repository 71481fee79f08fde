package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#89b4fa")
	colorError   = lipgloss.Color("#f38ba8")
	colorOK      = lipgloss.Color("#a6e3a1")
	colorSubtext = lipgloss.Color("#7f849c")

	titleStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	activeTabStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Underline(true).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorSubtext).Padding(0, 2)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtext)
	labelStyle       = lipgloss.NewStyle().Foreground(colorSubtext).Width(14)
	focusLabelStyle  = labelStyle.Foreground(colorAccent).Bold(true)
	statusOKStyle    = lipgloss.NewStyle().Foreground(colorOK)
	statusErrStyle   = lipgloss.NewStyle().Foreground(colorError)
	helpStyle        = lipgloss.NewStyle().Foreground(colorSubtext)
)
