package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	FrozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7"))

	WinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1).
			Width(10)

	selectedSlotStyle = slotStyle.
				BorderForeground(lipgloss.Color("#04B575"))
)

// tokenColors are cycled through by player index
var tokenColors = []lipgloss.Color{"#FF6B6B", "#4ECDC4", "#FFD700", "#A29BFE", "#FD79A8", "#55EFC4"}

func tokenStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(tokenColors[player%len(tokenColors)]).
		Bold(true)
}
