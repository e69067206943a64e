package cars

import (
	"context"
	"math"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/chart"
	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

type Service struct {
	cars   *dataset.Memo[dataframe.DataFrame]
	logger *zap.Logger
}

func NewService(src dataset.Source, file string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{logger: logger}
	s.cars = dataset.NewMemo(func(ctx context.Context) (dataframe.DataFrame, error) {
		df, err := dataset.LoadFile(ctx, src, file, dataset.ReadCars)
		if err != nil {
			return df, err
		}
		logger.Info("🚗 cars dataset loaded", zap.Int("rows", df.Nrow()))
		return df, nil
	})
	return s
}

// Reload forgets the loaded dataset.
func (s *Service) Reload() {
	s.cars.Invalidate()
}

// --------------------------------------------------
// Widget options
// --------------------------------------------------

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Options struct {
	Origins  []string `json:"origins"`
	HPMin    int      `json:"hp_min"`
	HPMax    int      `json:"hp_max"`
	Charts   []Option `json:"charts"`
	Defaults Filter   `json:"defaults"`
}

func (s *Service) Options(ctx context.Context) (*Options, error) {
	df, err := s.cars.Get(ctx)
	if err != nil {
		return nil, err
	}

	opts := &Options{
		Origins:  append([]string{AllOrigins}, uniqueInOrder(df.Col(dataset.ColOrigin).Records())...),
		Defaults: DefaultFilter(),
	}
	opts.HPMin, opts.HPMax = horsepowerBounds(df.Col(dataset.ColHorsepower).Float())
	for _, c := range Charts {
		opts.Charts = append(opts.Charts, Option{Value: string(c), Label: c.Label()})
	}
	return opts, nil
}

// --------------------------------------------------
// Filtered explorer
// --------------------------------------------------

type Exploration struct {
	Filter  Filter      `json:"filter"`
	Summary string      `json:"summary"`
	Count   int         `json:"count"`
	Rows    []chart.Row `json:"rows"`
	Chart   chart.Spec  `json:"chart"`
}

// Explore keeps cars whose horsepower lies in the inclusive range, then
// narrows by origin, and charts what remains.
func (s *Service) Explore(ctx context.Context, f Filter) (*Exploration, error) {
	df, err := s.cars.Get(ctx)
	if err != nil {
		return nil, err
	}

	filtered := df.Filter(dataframe.F{
		Colname: dataset.ColHorsepower, Comparator: series.GreaterEq, Comparando: float64(f.HPMin),
	}).Filter(dataframe.F{
		Colname: dataset.ColHorsepower, Comparator: series.LessEq, Comparando: float64(f.HPMax),
	})
	if f.Origin != AllOrigins {
		filtered = filtered.Filter(dataframe.F{
			Colname: dataset.ColOrigin, Comparator: series.Eq, Comparando: f.Origin,
		})
	}
	if filtered.Err != nil {
		return nil, apperrors.Internal("filter cars", filtered.Err)
	}

	rows := toRows(filtered)
	ex := &Exploration{
		Filter:  f,
		Summary: f.Summary(),
		Count:   len(rows),
		Rows:    rows,
	}
	switch f.Chart {
	case ChartHistogram:
		ex.Chart = chart.CarsHistogram(rows)
	default:
		ex.Chart = chart.CarsScatter(rows, chart.ScatterStyle{Size: 60, Tooltip: true})
	}
	return ex, nil
}

// Overview is the pannable scatter of every car.
func (s *Service) Overview(ctx context.Context) (chart.Spec, error) {
	df, err := s.cars.Get(ctx)
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.CarsScatter(toRows(df), chart.ScatterStyle{Interactive: true}), nil
}

// Columns shows the scatter and the horsepower histogram side by side.
func (s *Service) Columns(ctx context.Context) (chart.Spec, error) {
	df, err := s.cars.Get(ctx)
	if err != nil {
		return chart.Spec{}, err
	}
	rows := toRows(df)
	return chart.SideBySide(
		chart.CarsScatter(rows, chart.ScatterStyle{Size: 60}),
		chart.CarsHistogram(rows),
	), nil
}

// --------------------------------------------------

func toRows(df dataframe.DataFrame) []chart.Row {
	maps := df.Maps()
	rows := make([]chart.Row, len(maps))
	for i, m := range maps {
		row := make(chart.Row, len(m))
		for k, v := range m {
			if f, ok := v.(float64); ok {
				row[k] = chart.Num(f)
				continue
			}
			row[k] = v
		}
		rows[i] = row
	}
	return rows
}

// horsepowerBounds truncates the observed range to whole numbers, ignoring
// missing values.
func horsepowerBounds(hp []float64) (int, int) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range hp {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return int(lo), int(hi)
}

func uniqueInOrder(xs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, x := range xs {
		if x == "" || seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}
