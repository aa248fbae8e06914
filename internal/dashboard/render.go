package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

// Button zone IDs. The TUI maps clicks inside these zones to actions.
const (
	ButtonRetry      = "retry"
	ButtonRefresh    = "refresh"
	ButtonHistorical = "toggle-historical"
)

const (
	notAvailable   = "N/A"
	maxCardWidth   = 96
	minCardWidth   = 40
	defaultSpinner = "⠋"
)

// Renderer derives the screen from controller state. Render is a pure
// function of its arguments.
type Renderer struct {
	Width         int
	Height        int
	Location      string
	Spinner       string
	AltitudeChart bool

	// Mark wraps a button so its screen region can be resolved later.
	// Nil leaves buttons unmarked.
	Mark func(id, s string) string
}

// Render returns the full screen for state. The three FetchState variants
// are exhaustive and mutually exclusive.
func (r Renderer) Render(state FetchState, showHistorical bool) string {
	switch s := state.(type) {
	case Failed:
		return r.renderFailed(s)
	case Loaded:
		return r.renderLoaded(s, showHistorical)
	default:
		return r.renderLoading()
	}
}

func (r Renderer) renderLoading() string {
	frame := r.Spinner
	if frame == "" {
		frame = defaultSpinner
	}
	text := loadingStyle.Render(frame + " Loading...")
	return r.fill(text)
}

func (r Renderer) renderFailed(s Failed) string {
	msg := errorStyle.Render(s.Message)
	retry := r.button(ButtonRetry, "Retry")
	block := lipgloss.JoinVertical(lipgloss.Center, msg, "", retry)
	return r.fill(block)
}

func (r Renderer) renderLoaded(s Loaded, showHistorical bool) string {
	width := r.cardWidth()

	sections := []string{
		titleStyle.Render("Weather & Balloon Data"),
		r.button(ButtonRefresh, "Refresh Data"),
		"",
		r.section("Weather in "+r.location(), "No weather data available", r.weatherLines(s.Weather), width),
		"",
		r.section("Balloon Data", "No balloon data available", r.balloonLines(s.Balloons), width),
	}

	if r.AltitudeChart {
		if chart := renderAltitudeChart(s.Balloons, width-6); chart != "" {
			sections = append(sections, cardStyle.Width(width).Render(chart))
		}
	}

	toggleLabel := "Show Historical Data"
	if showHistorical {
		toggleLabel = "Hide Historical Data"
	}
	sections = append(sections, "", r.button(ButtonHistorical, toggleLabel))

	if showHistorical {
		sections = append(sections, "",
			r.section("Historical Balloon Data", "No historical balloon data available",
				r.historicalLines(s.Historical), width))
	}

	page := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if r.Width > 0 {
		page = lipgloss.PlaceHorizontal(r.Width, lipgloss.Center, page)
	}
	return page
}

// weatherLines renders each current-conditions field independently; a
// missing field is omitted rather than failing the card.
func (r Renderer) weatherLines(w *model.WeatherSnapshot) []string {
	if w == nil || w.CurrentConditions == nil {
		return nil
	}
	cc := w.CurrentConditions

	lines := make([]string, 0, 3)
	if cc.Temp.Present() {
		lines = append(lines, labelStyle.Render("Temperature:")+" "+cc.Temp.String()+"°F")
	}
	if cc.Conditions.Present() {
		lines = append(lines, labelStyle.Render("Condition:")+" "+cc.Conditions.String())
	}
	if cc.Humidity.Present() {
		lines = append(lines, labelStyle.Render("Humidity:")+" "+cc.Humidity.String()+"%")
	}
	if len(lines) == 0 {
		lines = append(lines, mutedStyle.Render("Current conditions not reported"))
	}
	return lines
}

func (r Renderer) balloonLines(readings []model.BalloonReading) []string {
	lines := make([]string, 0, len(readings))
	for i, b := range readings {
		lines = append(lines, joinFields(
			field("ID", fmt.Sprintf("%d", i+1)),
			field("Lat", presentOrNA(b.Lat)),
			field("Lon", presentOrNA(b.Lon)),
			field("Altitude", presentOrNA(b.Alt)),
		))
	}
	return lines
}

// historicalLines defaults every falsy field to N/A, so a numeric zero is
// displayed the same as a missing value.
func (r Renderer) historicalLines(hist []model.HistoricalBalloonReading) []string {
	lines := make([]string, 0, len(hist))
	for _, h := range hist {
		lines = append(lines, joinFields(
			field("ID", truthyOrNA(h.ID)),
			field("Lat", truthyOrNA(h.Lat)),
			field("Lon", truthyOrNA(h.Lon)),
			field("Altitude", truthyOrNA(h.Alt)),
			field("Hours Ago", truthyOrNA(h.HoursAgo)),
		))
	}
	return lines
}

// section renders a titled card, or the title plus the empty message when
// lines is empty.
func (r Renderer) section(title, empty string, lines []string, width int) string {
	heading := sectionTitleStyle.Render(title)
	if len(lines) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, heading, mutedStyle.Render(empty))
	}
	card := cardStyle.Width(width).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, heading, card)
}

func (r Renderer) button(id, label string) string {
	b := buttonStyle.Render(label)
	if r.Mark == nil {
		return b
	}
	return r.Mark(id, b)
}

func (r Renderer) fill(s string) string {
	if r.Width <= 0 || r.Height <= 0 {
		return s
	}
	return lipgloss.Place(r.Width, r.Height, lipgloss.Center, lipgloss.Center, s)
}

func (r Renderer) cardWidth() int {
	w := maxCardWidth
	if r.Width > 0 && r.Width-4 < w {
		w = r.Width - 4
	}
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func (r Renderer) location() string {
	if r.Location == "" {
		return model.DefaultLocation
	}
	return r.Location
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func joinFields(fields ...string) string {
	return strings.Join(fields, " | ")
}

func presentOrNA(v model.Value) string {
	if !v.Present() {
		return notAvailable
	}
	return v.String()
}

func truthyOrNA(v model.Value) string {
	if !v.Truthy() {
		return notAvailable
	}
	return v.String()
}
