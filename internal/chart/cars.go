package chart

const (
	carName       = "Name"
	carHorsepower = "Horsepower"
	carMPG        = "Miles_per_Gallon"
	carOrigin     = "Origin"
)

// ScatterStyle tunes the cars scatter.
type ScatterStyle struct {
	Size        float64
	Tooltip     bool
	Interactive bool
}

// CarsScatter plots horsepower against fuel economy, coloured by origin.
// An interactive scatter binds an interval selection to the scales for pan
// and zoom.
func CarsScatter(rows []Row, style ScatterStyle) Spec {
	s := Spec{
		Schema: Schema,
		Width:  Container,
		Data:   &Data{Values: rows},
		Mark:   &Mark{Type: "circle", Size: style.Size},
		Encoding: &Encoding{
			X:     field(carHorsepower, "quantitative"),
			Y:     field(carMPG, "quantitative"),
			Color: field(carOrigin, "nominal"),
		},
	}
	if style.Tooltip {
		s.Encoding.Tooltip = tooltips(carName, carHorsepower, carMPG)
	}
	if style.Interactive {
		s.Params = []Param{{Name: "grid", Select: "interval", Bind: "scales"}}
	}
	return s
}

// CarsHistogram counts cars per horsepower bin, stacked by origin.
func CarsHistogram(rows []Row) Spec {
	return Spec{
		Schema: Schema,
		Width:  Container,
		Data:   &Data{Values: rows},
		Mark:   &Mark{Type: "bar"},
		Encoding: &Encoding{
			X:     &Channel{Field: carHorsepower, Type: "quantitative", Bin: true},
			Y:     &Channel{Aggregate: "count", Type: "quantitative"},
			Color: field(carOrigin, "nominal"),
		},
	}
}

// SideBySide places views next to each other.
func SideBySide(views ...Spec) Spec {
	for i := range views {
		views[i].Schema = ""
		views[i].Width = nil
	}
	return Spec{Schema: Schema, HConcat: views}
}
