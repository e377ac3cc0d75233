package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors must stay readable on both light and dark terminal backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorSelectedBorder lipgloss.TerminalColor = ac("232", "255")
	colorCardBorder     lipgloss.TerminalColor = ac("250", "243")
	colorError          lipgloss.TerminalColor = ac("160", "203")
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleError  = lipgloss.NewStyle().Foreground(colorError)

	styleCell = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCardBorder)
	styleCellSelected = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(colorSelectedBorder).
				Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorCardBorder).
			PaddingLeft(1)
)

// resolveMarkdownStyle maps the configured preview style to a glamour
// standard style name. An empty setting follows the terminal background.
func resolveMarkdownStyle(configured string) string {
	switch s := strings.ToLower(strings.TrimSpace(configured)); s {
	case "light", "dark", "ascii", "notty":
		return s
	}
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
