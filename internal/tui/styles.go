package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/patterndeck/internal/deck"
)

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorSurface lipgloss.Color = "#313244"
)

var categoryColors = map[deck.Category]lipgloss.Color{
	deck.CategoryEntrepreneur: "#f9e2af",
	deck.CategoryTeam:         "#94e2d5",
	deck.CategoryStakeholders: "#f5c2e7",
	deck.CategoryProduct:      "#89b4fa",
	deck.CategoryMarket:       "#a6e3a1",
	deck.CategoryFinance:      "#fab387",
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Foreground(colorText).
			Padding(1, 2).
			Width(cardWidth)
	imageStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurface).
			Width(cardWidth - 4).
			Align(lipgloss.Center)
	chipStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface).
			Padding(0, 1).
			MarginRight(1)
	relatedStyle       = lipgloss.NewStyle().Foreground(colorAccent).Underline(true)
	relatedActiveStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorAccent).Bold(true)

	cursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

const cardWidth = 48

func categoryStyle(c deck.Category) lipgloss.Style {
	color, ok := categoryColors[c]
	if !ok {
		color = colorMuted
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
