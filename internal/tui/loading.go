package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// handleSpinnerTick advances the spinner while any load is in flight and
// lets the tick chain lapse otherwise.
func (m *DashboardModel) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.anyLoadInFlight() {
		m.spinning = false
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// anyLoadInFlight returns true if a fetch has been issued but not applied.
func (m *DashboardModel) anyLoadInFlight() bool {
	return m.ctrl.InFlight() > 0
}

// startSpinnerIfNeeded schedules a spinner tick if a load is in flight and
// no tick chain is already running.
func (m *DashboardModel) startSpinnerIfNeeded() tea.Cmd {
	if m.spinning || !m.anyLoadInFlight() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}
