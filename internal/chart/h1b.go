package chart

import (
	"github.com/namwkim/dataviz-storytelling/internal/analytics"
)

const (
	// BrushParam names the interval selection on the trend chart.
	BrushParam = "brush"

	fieldYear  = "YEAR"
	fieldCity  = "CITY"
	fieldState = "STATE"
	fieldLat   = "lat"
	fieldLng   = "lng"
)

// Trend is the yearly line chart with an x-interval brush.
func Trend(points []analytics.YearValue, m analytics.Measure) Spec {
	col := m.Column()
	values := make([]Row, len(points))
	for i, p := range points {
		values[i] = Row{fieldYear: p.Year, col: Num(p.Value)}
	}

	return Spec{
		Schema: Schema,
		Width:  Container,
		Data:   &Data{Values: values},
		Mark:   &Mark{Type: "line", Point: true},
		Encoding: &Encoding{
			X:       field(fieldYear, "ordinal"),
			Y:       field(col, "quantitative"),
			Tooltip: tooltips(fieldYear, col),
		},
		Params: []Param{{
			Name:   BrushParam,
			Select: &Selection{Type: "interval", Encodings: []string{"x"}},
		}},
	}
}

// Breakdown is the horizontal top-n bar chart, largest first.
func Breakdown(bars []analytics.CategoryValue, d analytics.Dimension, m analytics.Measure) Spec {
	col, cat := m.Column(), d.Column()
	values := make([]Row, len(bars))
	for i, b := range bars {
		values[i] = Row{cat: b.Category, col: Num(b.Value)}
	}

	y := field(cat, "ordinal")
	y.Sort = "-x"

	return Spec{
		Schema: Schema,
		Width:  Container,
		Height: Step{Step: 20},
		Data:   &Data{Values: values},
		Mark:   &Mark{Type: "bar"},
		Encoding: &Encoding{
			X:       field(col, "quantitative"),
			Y:       y,
			Tooltip: tooltips(cat, col),
		},
	}
}

// CityMap layers sized, shaded city circles over a US states background.
func CityMap(cities []analytics.CityValue, m analytics.Measure, atlasURL string) Spec {
	col := m.Column()
	values := make([]Row, len(cities))
	for i, c := range cities {
		values[i] = Row{
			fieldCity:  c.City,
			fieldState: c.State,
			fieldLat:   c.Lat,
			fieldLng:   c.Lng,
			col:        Num(c.Value),
		}
	}

	size := field(col, "quantitative")
	size.Scale = &Scale{Range: []float64{10, 500}}
	color := field(col, "quantitative")
	color.Scale = &Scale{Scheme: "reds"}

	return Spec{
		Schema:     Schema,
		Width:      Container,
		Projection: &Projection{Type: "albersUsa"},
		Layer: []Spec{
			{
				Data: &Data{URL: atlasURL, Format: &Format{Type: "topojson", Feature: "states"}},
				Mark: &Mark{Type: "geoshape", Fill: "whitesmoke", Stroke: "white"},
			},
			{
				Data: &Data{Values: values},
				Mark: &Mark{Type: "circle"},
				Encoding: &Encoding{
					Longitude: field(fieldLng, "quantitative"),
					Latitude:  field(fieldLat, "quantitative"),
					Size:      size,
					Color:     color,
					Tooltip:   tooltips(fieldCity, fieldState, col),
				},
			},
		},
	}
}

// StateBox draws one box per state over the per-category values.
func StateBox(cells []analytics.StateValue, d analytics.Dimension, m analytics.Measure) Spec {
	col, cat := m.Column(), d.Column()
	values := make([]Row, len(cells))
	for i, c := range cells {
		values[i] = Row{fieldState: c.State, cat: c.Category, col: Num(c.Value)}
	}

	return Spec{
		Schema: Schema,
		Width:  Container,
		Data:   &Data{Values: values},
		Mark:   &Mark{Type: "boxplot"},
		Encoding: &Encoding{
			Y: field(fieldState, "nominal"),
			X: field(col, "quantitative"),
		},
	}
}

// Correlation plots one circle per category, x and y picked from the two
// measures.
func Correlation(points []analytics.CategoryStats, d analytics.Dimension, x, y analytics.Measure) Spec {
	cat := d.Column()
	values := make([]Row, len(points))
	for i, p := range points {
		values[i] = Row{
			cat:                                 p.Category,
			analytics.MeasurePetitions.Column(): Num(p.Count),
			analytics.MeasureWage.Column():      Num(p.MedianWage),
		}
	}

	color := field(x.Column(), "quantitative")
	color.Scale = &Scale{Scheme: "blues"}

	tips := []string{cat, x.Column()}
	if y != x {
		tips = append(tips, y.Column())
	}

	return Spec{
		Schema: Schema,
		Width:  Container,
		Height: 350,
		Data:   &Data{Values: values},
		Mark:   &Mark{Type: "circle", Size: 60},
		Encoding: &Encoding{
			X:       field(x.Column(), "quantitative"),
			Y:       field(y.Column(), "quantitative"),
			Color:   color,
			Tooltip: tooltips(tips...),
		},
	}
}
