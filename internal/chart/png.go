package chart

import (
	"io"

	"github.com/namwkim/dataviz-storytelling/internal/analytics"
	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	gochart "github.com/wcharczuk/go-chart/v2"
)

const maxBarLabel = 14

// BreakdownPNG renders the top-n breakdown as a bar chart image.
func BreakdownPNG(w io.Writer, bars []analytics.CategoryValue, d analytics.Dimension, m analytics.Measure) error {
	if len(bars) == 0 {
		return apperrors.NotFound("no categories to plot", nil)
	}

	values := make([]gochart.Value, len(bars))
	top := 0.0
	for i, b := range bars {
		values[i] = gochart.Value{Value: b.Value, Label: shorten(b.Category)}
		if b.Value > top {
			top = b.Value
		}
	}

	bc := gochart.BarChart{
		Title: m.Column() + " by " + d.Label(),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48},
		},
		Width:    60*len(values) + 120,
		Height:   480,
		BarWidth: 40,
		Bars:     values,
	}
	if top > 0 {
		bc.YAxis = gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: top * 1.1}}
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return apperrors.Internal("render breakdown png", err)
	}
	return nil
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxBarLabel {
		return s
	}
	return string(r[:maxBarLabel-1]) + "…"
}
