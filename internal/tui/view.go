package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
)

var (
	statusBaseStyle = lipgloss.NewStyle().
			Background(dashboard.ColorNavy).
			Foreground(dashboard.ColorWhite)

	statusSectionStyle = statusBaseStyle.
				Bold(true).
				Padding(0, 1)

	statusInfoStyle = statusBaseStyle.
			Foreground(dashboard.ColorGray).
			Padding(0, 1)
)

// View renders the dashboard
func (m *DashboardModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}

	var body string
	if _, ok := m.ctrl.State().(dashboard.Loaded); ok {
		body = m.viewport.View()
	} else {
		body = m.renderer().Render(m.ctrl.State(), m.ctrl.ShowHistorical())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

// renderFooter renders the status line, plus the full key help when
// expanded.
func (m *DashboardModel) renderFooter() string {
	status := m.renderStatusLine()
	if !m.help.ShowAll {
		return status
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.help.View(m.keys), status)
}

// renderStatusLine renders the state indicator, short key help and fetch
// activity on a single line.
func (m *DashboardModel) renderStatusLine() string {
	var section string
	switch m.ctrl.State().(type) {
	case dashboard.Loaded:
		section = "[Loaded]"
	case dashboard.Failed:
		section = "[Failed]"
	default:
		section = "[Loading]"
	}
	left := statusSectionStyle.Render(section)

	var right string
	if n := m.ctrl.InFlight(); n > 0 {
		right = fmt.Sprintf("%s %d in flight", m.spinner.View(), n)
	}
	if t := m.ctrl.LastLoaded(); !t.IsZero() {
		if right != "" {
			right += " • "
		}
		right += "updated " + t.Format("15:04:05")
	}
	if right != "" {
		right = statusInfoStyle.Render(right)
	}

	var center string
	if !m.help.ShowAll {
		avail := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if avail > 10 {
			h := m.help
			h.Width = avail
			center = statusBaseStyle.Padding(0, 1).Render(h.ShortHelpView(m.keys.ShortHelp()))
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := statusBaseStyle.Render(fmt.Sprintf("%*s", gap, ""))

	line := lipgloss.JoinHorizontal(lipgloss.Top, left, center, filler, right)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}
