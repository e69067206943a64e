package chart

import (
	"io"

	"github.com/namwkim/dataviz-storytelling/internal/analytics"
	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

const (
	svgWidth  = 640
	svgHeight = 360
)

// TrendSVG renders the yearly trend as a static line chart.
func TrendSVG(w io.Writer, points []analytics.YearValue, m analytics.Measure) error {
	if len(points) == 0 {
		return apperrors.NotFound("no yearly data to plot", nil)
	}

	years := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		years[i] = float64(p.Year)
		values[i] = p.Value
	}

	tab := new(table.Builder).Add("year", years).Add("value", values).Done()

	plot := gg.NewPlot(tab)
	plot.SetScale("y", gg.NewLinearScaler().Include(0))
	plot.Add(
		gg.LayerLines{X: "year", Y: "value"},
		gg.LayerPoints{X: "year", Y: "value"},
		gg.Title("H1B petitions over time"),
		gg.AxisLabel("x", "Year"),
		gg.AxisLabel("y", m.Column()),
	)

	return plot.WriteSVG(w, svgWidth, svgHeight)
}

// CorrelationSVG renders the category scatter with a least-squares line.
func CorrelationSVG(w io.Writer, points []analytics.CategoryStats, x, y analytics.Measure) error {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		xs = append(xs, p.Value(x))
		ys = append(ys, p.Value(y))
	}
	if len(xs) == 0 {
		return apperrors.NotFound("no categories to plot", nil)
	}

	tab := new(table.Builder).Add("x", xs).Add("y", ys).Done()

	plot := gg.NewPlot(tab)
	plot.Add(
		gg.LayerPoints{X: "x", Y: "y"},
		gg.Title("Correlation by category"),
		gg.AxisLabel("x", x.Column()),
		gg.AxisLabel("y", y.Column()),
	)

	if _, ok := analytics.FitLine(points, x, y); ok {
		plot.Save()
		plot.Stat(ggstat.LeastSquares{X: "x", Y: "y"})
		plot.Add(gg.LayerLines{X: "x", Y: "y"})
		plot.Restore()
	}

	return plot.WriteSVG(w, svgWidth, svgHeight)
}
