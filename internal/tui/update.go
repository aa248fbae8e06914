package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
)

// Init starts the automatic first load. Later calls are no-ops.
func (m *DashboardModel) Init() tea.Cmd {
	t, ok := m.ctrl.Mount()
	if !ok {
		return nil
	}
	return tea.Batch(m.fetchCmd(t), m.startSpinnerIfNeeded())
}

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouseEvent(msg)

	case fetchResultMsg:
		m.ctrl.Apply(dashboard.Result(msg))
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}

	return m, nil
}

// load begins a new invocation without touching the current state; the
// previous screen stays up until the result is applied.
func (m *DashboardModel) load() tea.Cmd {
	t := m.ctrl.Begin()
	return tea.Batch(m.fetchCmd(t), m.startSpinnerIfNeeded())
}

func (m *DashboardModel) fetchCmd(t dashboard.Ticket) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return fetchResultMsg(ctrl.Fetch(ctx, t))
	}
}

func (m *DashboardModel) toggleHistorical() {
	m.ctrl.ToggleHistorical()
	m.syncViewport()
}

// handleKeyPress dispatches key events. Actions are only available while
// the matching control is on screen.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys

	switch {
	case key.Matches(msg, k.ForceQuit), key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.syncViewport()
		return m, nil

	case key.Matches(msg, k.ToggleChart):
		m.altitudeChart = !m.altitudeChart
		m.syncViewport()
		return m, nil
	}

	switch m.ctrl.State().(type) {
	case dashboard.Failed:
		if key.Matches(msg, k.Refresh) {
			return m, m.load()
		}

	case dashboard.Loaded:
		switch {
		case key.Matches(msg, k.Refresh):
			return m, m.load()
		case key.Matches(msg, k.ToggleHistorical):
			m.toggleHistorical()
			return m, nil
		case key.Matches(msg, k.Up):
			m.viewport.ScrollUp(1)
		case key.Matches(msg, k.Down):
			m.viewport.ScrollDown(1)
		case key.Matches(msg, k.PageUp):
			m.viewport.HalfPageUp()
		case key.Matches(msg, k.PageDown):
			m.viewport.HalfPageDown()
		case key.Matches(msg, k.Home):
			m.viewport.GotoTop()
		case key.Matches(msg, k.End):
			m.viewport.GotoBottom()
		}
	}

	return m, nil
}

// handleMouseEvent processes clicks on marked buttons and wheel scrolling.
func (m *DashboardModel) handleMouseEvent(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonLeft:
		return m.handleMouseClick(msg)

	case tea.MouseButtonWheelUp:
		if m.reverseScrollWheel {
			m.viewport.ScrollDown(1)
		} else {
			m.viewport.ScrollUp(1)
		}

	case tea.MouseButtonWheelDown:
		if m.reverseScrollWheel {
			m.viewport.ScrollUp(1)
		} else {
			m.viewport.ScrollDown(1)
		}
	}

	return m, nil
}

// handleMouseClick resolves a left click against the zones of the buttons
// visible in the current state. Zones from earlier frames are ignored.
func (m *DashboardModel) handleMouseClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch m.ctrl.State().(type) {
	case dashboard.Failed:
		if m.clicked(dashboard.ButtonRetry, msg) {
			return m, m.load()
		}

	case dashboard.Loaded:
		if m.clicked(dashboard.ButtonRefresh, msg) {
			return m, m.load()
		}
		if m.clicked(dashboard.ButtonHistorical, msg) {
			m.toggleHistorical()
		}
	}
	return m, nil
}

func (m *DashboardModel) clicked(id string, msg tea.MouseMsg) bool {
	if m.zones == nil {
		return false
	}
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

// syncViewport re-renders the loaded page into the scrollable viewport.
func (m *DashboardModel) syncViewport() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.contentHeight()

	if s, ok := m.ctrl.State().(dashboard.Loaded); ok {
		m.viewport.SetContent(m.renderer().Render(s, m.ctrl.ShowHistorical()))
	}
}
