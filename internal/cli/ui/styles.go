package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	Title      lipgloss.Style
	Key        lipgloss.Style
	Muted      lipgloss.Style
	SummaryBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	Title: lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true),

	Key: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

	Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

	SummaryBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),
}

// riskColors maps risk levels to terminal colors.
var riskColors = map[string]lipgloss.Color{
	"Low":      lipgloss.Color("42"),
	"Medium":   lipgloss.Color("220"),
	"High":     lipgloss.Color("208"),
	"Critical": lipgloss.Color("196"),
}
