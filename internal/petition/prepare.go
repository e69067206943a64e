package petition

import (
	"math"
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"github.com/aclements/go-moremath/stats"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultOutlierZ is the |z| cut-off applied to prevailing wages.
const DefaultOutlierZ = 3.0

// Prepare cleans the raw petitions, attaches city coordinates and drops wage
// outliers. Rows whose wage z-score has |z| >= cutoff are removed; a zero
// spread keeps every row.
func Prepare(petitions, cities dataframe.DataFrame, cutoff float64) ([]Petition, Stats, error) {
	var st Stats
	if cutoff <= 0 {
		cutoff = DefaultOutlierZ
	}

	joined, err := joinCoordinates(petitions, cities)
	if err != nil {
		return nil, st, err
	}
	st.Loaded = petitions.Nrow()

	rows := toPetitions(joined)
	for _, p := range rows {
		if p.HasCoords {
			st.Matched++
		} else {
			st.Unmatched++
		}
	}

	valid := rows[:0]
	for _, p := range rows {
		if math.IsNaN(p.Wage) || math.IsInf(p.Wage, 0) {
			st.InvalidWage++
			continue
		}
		valid = append(valid, p)
	}

	wages := make([]float64, len(valid))
	for i, p := range valid {
		wages[i] = p.Wage
	}
	z, mean, sd := ZScores(wages)
	st.WageMean, st.WageStdDev = mean, sd

	kept := make([]Petition, 0, len(valid))
	for i, p := range valid {
		if sd > 0 && math.Abs(z[i]) >= cutoff {
			st.Outliers++
			continue
		}
		kept = append(kept, p)
	}
	st.Kept = len(kept)

	return kept, st, nil
}

// ZScores returns (x-mean)/std for every value using the population standard
// deviation. When the spread is zero every score is zero.
func ZScores(xs []float64) ([]float64, float64, float64) {
	z := make([]float64, len(xs))
	if len(xs) == 0 {
		return z, 0, 0
	}

	mean := stats.Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(xs)))
	if sd == 0 || math.IsNaN(sd) {
		return z, mean, 0
	}

	for i, x := range xs {
		z[i] = (x - mean) / sd
	}
	return z, mean, sd
}

func joinCoordinates(petitions, cities dataframe.DataFrame) (dataframe.DataFrame, error) {
	if petitions.Err != nil {
		return petitions, apperrors.Internal("petitions frame", petitions.Err)
	}
	if cities.Err != nil {
		return cities, apperrors.Internal("cities frame", cities.Err)
	}

	p := petitions.
		Mutate(series.New(mapStrings(petitions.Col(dataset.ColCity).Records(), strings.TrimSpace), series.String, dataset.ColCity)).
		Mutate(series.New(mapStrings(petitions.Col(dataset.ColState).Records(), strings.TrimSpace), series.String, dataset.ColState))

	lookup := cities.Select([]string{dataset.ColLookupCity, dataset.ColLookupState, dataset.ColLat, dataset.ColLng})
	lookup = lookup.
		Mutate(series.New(mapStrings(lookup.Col(dataset.ColLookupCity).Records(), normalizeKey), series.String, dataset.ColLookupCity)).
		Mutate(series.New(mapStrings(lookup.Col(dataset.ColLookupState).Records(), normalizeKey), series.String, dataset.ColLookupState)).
		Rename(dataset.ColCity, dataset.ColLookupCity).
		Rename(dataset.ColState, dataset.ColLookupState)
	if lookup.Err != nil {
		return lookup, apperrors.Internal("normalize cities", lookup.Err)
	}

	// LeftJoin compares every pair of rows, so keep only lookup rows that can match.
	keys := unique(p.Col(dataset.ColCity).Records())
	if len(keys) > 0 {
		lookup = lookup.Filter(dataframe.F{
			Colname:    dataset.ColCity,
			Comparator: series.In,
			Comparando: keys,
		})
		if lookup.Err != nil {
			return lookup, apperrors.Internal("filter cities", lookup.Err)
		}
	}

	if len(keys) == 0 || lookup.Nrow() == 0 {
		n := p.Nrow()
		return p.
			Mutate(series.New(nanSlice(n), series.Float, dataset.ColLat)).
			Mutate(series.New(nanSlice(n), series.Float, dataset.ColLng)), nil
	}

	joined := p.LeftJoin(lookup, dataset.ColCity, dataset.ColState)
	if joined.Err != nil {
		return joined, apperrors.Internal("join city coordinates", joined.Err)
	}
	return joined, nil
}

func toPetitions(df dataframe.DataFrame) []Petition {
	n := df.Nrow()
	years := df.Col(dataset.ColYear).Float()
	wages := df.Col(dataset.ColWage).Float()
	employers := recordsOrBlank(df.Col(dataset.ColEmployer))
	titles := recordsOrBlank(df.Col(dataset.ColJobTitle))
	cities := recordsOrBlank(df.Col(dataset.ColCity))
	states := recordsOrBlank(df.Col(dataset.ColState))
	lats := df.Col(dataset.ColLat).Float()
	lngs := df.Col(dataset.ColLng).Float()

	out := make([]Petition, n)
	for i := 0; i < n; i++ {
		p := Petition{
			Employer: employers[i],
			JobTitle: titles[i],
			Wage:     wages[i],
			City:     cities[i],
			State:    states[i],
		}
		if !math.IsNaN(years[i]) {
			p.Year = int(years[i])
		}
		if !math.IsNaN(lats[i]) && !math.IsNaN(lngs[i]) {
			p.Lat, p.Lng, p.HasCoords = lats[i], lngs[i], true
		}
		out[i] = p
	}
	return out
}

// recordsOrBlank returns the column as strings with missing cells as "" so
// groupings skip them. LeftJoin copies a missing string as the text "NaN"
// without its missing flag, so both forms count.
func recordsOrBlank(col series.Series) []string {
	out := col.Records()
	for i, missing := range col.IsNaN() {
		if missing || out[i] == "NaN" {
			out[i] = ""
		}
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func mapStrings(xs []string, f func(string) string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

func unique(xs []string) []string {
	seen := make(map[string]bool, len(xs))
	var out []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
