package analytics

import (
	"math"
	"sort"

	"github.com/namwkim/dataviz-storytelling/internal/petition"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"
	"github.com/go-gota/gota/series"
)

// ============================================================================
// RESULT ROWS
// ============================================================================

type YearValue struct {
	Year  int     `json:"YEAR"`
	Value float64 `json:"value"`
}

type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type CityValue struct {
	City  string  `json:"CITY"`
	State string  `json:"STATE"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Value float64 `json:"value"`
}

type StateValue struct {
	State    string  `json:"STATE"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type CategoryStats struct {
	Category   string  `json:"category"`
	Count      float64 `json:"count"`
	MedianWage float64 `json:"median_wage"`
}

// Value returns the figure the scatter plots for m.
func (c CategoryStats) Value(m Measure) float64 {
	if m == MeasureWage {
		return c.MedianWage
	}
	return c.Count
}

// Line is a least-squares fit y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// ============================================================================
// PIPELINE
// ============================================================================

// FilterYears keeps rows whose year is selected. An empty selection keeps
// everything.
func FilterYears(rows []petition.Petition, years []int) []petition.Petition {
	if len(years) == 0 {
		return rows
	}
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}

	out := make([]petition.Petition, 0, len(rows))
	for _, p := range rows {
		if want[p.Year] {
			out = append(out, p)
		}
	}
	return out
}

// Trend is the per-year petition count or median wage, by ascending year.
func Trend(rows []petition.Petition, m Measure) []YearValue {
	groups := make(map[int][]float64)
	for _, p := range rows {
		if p.Year == 0 {
			continue
		}
		groups[p.Year] = append(groups[p.Year], p.Wage)
	}

	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearValue, 0, len(years))
	for _, y := range years {
		out = append(out, YearValue{Year: y, Value: reduce(groups[y], m, median)})
	}
	return out
}

// Breakdown ranks categories by petition count or mean wage and keeps the
// top n, largest first. Equal values keep ascending category order.
func Breakdown(rows []petition.Petition, d Dimension, m Measure, n int) []CategoryValue {
	groups := groupBy(rows, d.Of)

	out := make([]CategoryValue, 0, len(groups.keys))
	for _, k := range groups.keys {
		out = append(out, CategoryValue{Category: k, Value: reduce(groups.wages[k], m, mean)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CityMap aggregates petitions per located city. Rows without coordinates
// are skipped.
func CityMap(rows []petition.Petition, m Measure) []CityValue {
	type cityKey struct {
		city, state string
		lat, lng    float64
	}

	groups := make(map[cityKey][]float64)
	for _, p := range rows {
		if !p.HasCoords {
			continue
		}
		k := cityKey{p.City, p.State, p.Lat, p.Lng}
		groups[k] = append(groups[k], p.Wage)
	}

	out := make([]CityValue, 0, len(groups))
	for k, wages := range groups {
		out = append(out, CityValue{
			City:  k.city,
			State: k.state,
			Lat:   k.lat,
			Lng:   k.lng,
			Value: reduce(wages, m, mean),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.City != b.City {
			return a.City < b.City
		}
		if a.State != b.State {
			return a.State < b.State
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		return a.Lng < b.Lng
	})
	return out
}

// StateBox aggregates per (state, category) pair; the boxplot draws one box
// per state from these values.
func StateBox(rows []petition.Petition, d Dimension, m Measure) []StateValue {
	type pair struct{ state, category string }

	groups := make(map[pair][]float64)
	for _, p := range rows {
		c := d.Of(p)
		if p.State == "" || c == "" {
			continue
		}
		k := pair{p.State, c}
		groups[k] = append(groups[k], p.Wage)
	}

	out := make([]StateValue, 0, len(groups))
	for k, wages := range groups {
		out = append(out, StateValue{State: k.state, Category: k.category, Value: reduce(wages, m, mean)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Correlation computes petition count and median wage per category.
func Correlation(rows []petition.Petition, d Dimension) []CategoryStats {
	groups := groupBy(rows, d.Of)

	out := make([]CategoryStats, 0, len(groups.keys))
	for _, k := range groups.keys {
		wages := groups.wages[k]
		out = append(out, CategoryStats{
			Category:   k,
			Count:      float64(len(wages)),
			MedianWage: median(wages),
		})
	}
	return out
}

// FitLine regresses the y measure on the x measure across points. It
// reports false when fewer than two distinct x values exist.
func FitLine(points []CategoryStats, x, y Measure) (Line, bool) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	distinct := make(map[float64]bool)
	for _, p := range points {
		px, py := p.Value(x), p.Value(y)
		if math.IsNaN(px) || math.IsNaN(py) {
			continue
		}
		xs = append(xs, px)
		ys = append(ys, py)
		distinct[px] = true
	}
	if len(distinct) < 2 {
		return Line{}, false
	}

	r := fit.PolynomialRegression(xs, ys, nil, 1)
	intercept := r.F(0)
	return Line{Slope: r.F(1) - intercept, Intercept: intercept}, true
}

// WageSummary describes the wage distribution of rows.
type WageSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

func SummarizeWages(rows []petition.Petition) WageSummary {
	wages := make([]float64, len(rows))
	for i, p := range rows {
		wages[i] = p.Wage
	}
	s := WageSummary{Count: len(wages)}
	if len(wages) == 0 {
		return s
	}
	s.Mean = stats.Mean(wages)
	s.Median = median(wages)
	if len(wages) > 1 {
		s.StdDev = stats.StdDev(wages)
	}
	return s
}

// ============================================================================
// HELPERS
// ============================================================================

type grouped struct {
	keys  []string
	wages map[string][]float64
}

// groupBy buckets wages by key, skipping blank keys. Keys come back sorted.
func groupBy(rows []petition.Petition, key func(petition.Petition) string) grouped {
	g := grouped{wages: make(map[string][]float64)}
	for _, p := range rows {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := g.wages[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.wages[k] = append(g.wages[k], p.Wage)
	}
	sort.Strings(g.keys)
	return g
}

// reduce returns the group size for the petitions measure, otherwise the
// wage statistic f.
func reduce(wages []float64, m Measure, f func([]float64) float64) float64 {
	if m == MeasureWage {
		return f(wages)
	}
	return float64(len(wages))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stats.Mean(xs)
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return series.New(xs, series.Float, "wage").Median()
}
