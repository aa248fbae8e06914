package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	ColorBlue     = lipgloss.Color("39")
	ColorNavy     = lipgloss.Color("17")
	ColorWhite    = lipgloss.Color("15")
	ColorGray     = lipgloss.Color("245")
	ColorDarkGray = lipgloss.Color("240")
	ColorRed      = lipgloss.Color("196")
	ColorPurple   = lipgloss.Color("141")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			MarginBottom(1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPurple)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDarkGray).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 2)

	loadingStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)
)
