package view

import "github.com/charmbracelet/lipgloss"

// Theme is the dashboard palette.
type Theme struct {
	Base    lipgloss.Color
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
}

var DefaultTheme = Theme{
	Base:    lipgloss.Color("#1B1B22"),
	Border:  lipgloss.Color("#45444F"),
	Muted:   lipgloss.Color("#87859A"),
	Text:    lipgloss.Color("#E2DEE0"),
	Primary: lipgloss.Color("#7A5CFF"),
	Success: lipgloss.Color("#00E0A0"),
	Warning: lipgloss.Color("#FFC800"),
	Error:   lipgloss.Color("#F0457E"),
	Info:    lipgloss.Color("#2EC4D6"),
}
