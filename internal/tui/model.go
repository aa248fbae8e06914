package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
)

// Options holds the display settings read from config.
type Options struct {
	Location           string
	AltitudeChart      bool
	ReverseScrollWheel bool
}

// DashboardModel is the single-view dashboard. All controller mutations
// happen inside Update; fetches run as tea.Cmds and report back with
// fetchResultMsg.
type DashboardModel struct {
	ctx  context.Context
	ctrl *dashboard.Controller

	// Window dimensions
	width  int
	height int

	// Configuration
	location           string
	altitudeChart      bool
	reverseScrollWheel bool

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	zones    *zone.Manager

	// spinning is true while a spinner tick chain is scheduled.
	spinning bool
}

// fetchResultMsg carries a completed load back into the update loop.
type fetchResultMsg dashboard.Result

// NewDashboardModel creates the dashboard around ctrl. ctx bounds every
// fetch the model starts. zones may be nil, in which case buttons are not
// clickable.
func NewDashboardModel(ctx context.Context, ctrl *dashboard.Controller, zones *zone.Manager, opts Options) *DashboardModel {
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &DashboardModel{
		ctx:                ctx,
		ctrl:               ctrl,
		location:           opts.Location,
		altitudeChart:      opts.AltitudeChart,
		reverseScrollWheel: opts.ReverseScrollWheel,
		keys:               DefaultKeyMap(),
		help:               help.New(),
		spinner:            sp,
		viewport:           viewport.New(80, 20),
		zones:              zones,
	}
}

// renderer builds the pure renderer for the current frame.
func (m *DashboardModel) renderer() dashboard.Renderer {
	r := dashboard.Renderer{
		Width:         m.width,
		Height:        m.contentHeight(),
		Location:      m.location,
		Spinner:       m.spinner.View(),
		AltitudeChart: m.altitudeChart,
	}
	if m.zones != nil {
		r.Mark = m.zones.Mark
	}
	return r
}

// contentHeight is the space left above the footer.
func (m *DashboardModel) contentHeight() int {
	h := m.height - lipgloss.Height(m.renderFooter())
	if h < 1 {
		h = 1
	}
	return h
}
