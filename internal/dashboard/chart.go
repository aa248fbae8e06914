package dashboard

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

const altitudeChartHeight = 8

// renderAltitudeChart draws one bar per reading with a numeric altitude, in
// list order. Readings without altitude are skipped. Returns "" when there is
// nothing to draw.
func renderAltitudeChart(readings []model.BalloonReading, width int) string {
	if width < 20 {
		width = 20
	}
	maxBars := width / 2

	barStyle := lipgloss.NewStyle().Foreground(ColorBlue).Background(ColorBlue)

	var (
		bars    []barchart.BarData
		maxAlt  float64
		skipped int
	)
	for _, r := range readings {
		alt, ok := r.Alt.Float()
		if !ok || alt < 0 {
			skipped++
			continue
		}
		if len(bars) >= maxBars {
			break
		}
		if alt > maxAlt {
			maxAlt = alt
		}
		bars = append(bars, barchart.BarData{
			Values: []barchart.BarValue{{Name: "alt", Value: alt, Style: barStyle}},
		})
	}
	if len(bars) == 0 {
		return ""
	}

	bc := barchart.New(width, altitudeChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for _, b := range bars {
		bc.Push(b)
	}
	bc.Draw()

	header := sectionTitleStyle.Render("Altitude") + mutedStyle.Render(
		fmt.Sprintf("  max %s, %d shown", model.NumberValue(maxAlt), len(bars)))
	if skipped > 0 {
		header += mutedStyle.Render(fmt.Sprintf(", %d without altitude", skipped))
	}
	return strings.Join([]string{header, bc.View()}, "\n")
}
