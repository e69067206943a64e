package petition

import (
	"context"
	"math"
	"strconv"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Read petitions as a frame shaped like the CSV
// --------------------------------------------------
func (r *PostgresRepository) Petitions(ctx context.Context) (dataframe.DataFrame, error) {
	query := `
		SELECT
			year,
			employer_name,
			job_title,
			prevailing_wage,
			city,
			state
		FROM petitions
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.Unavailable("query petitions", err)
	}
	defer rows.Close()

	records := [][]string{{
		dataset.ColYear, dataset.ColEmployer, dataset.ColJobTitle,
		dataset.ColWage, dataset.ColCity, dataset.ColState,
	}}

	for rows.Next() {
		var (
			year                         *int32
			wage                         *float64
			employer, title, city, state string
		)
		if err := rows.Scan(&year, &employer, &title, &wage, &city, &state); err != nil {
			return dataframe.DataFrame{}, apperrors.Internal("scan petition", err)
		}
		records = append(records, []string{
			formatInt(year), employer, title, formatFloat(wage), city, state,
		})
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, apperrors.Unavailable("read petitions", err)
	}

	return loadRecords(records, map[string]series.Type{
		dataset.ColYear: series.Int,
		dataset.ColWage: series.Float,
	})
}

// --------------------------------------------------
// Read the city coordinate lookup
// --------------------------------------------------
func (r *PostgresRepository) Cities(ctx context.Context) (dataframe.DataFrame, error) {
	query := `
		SELECT city, state_name, lat, lng
		FROM city_coordinates
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return dataframe.DataFrame{}, apperrors.Unavailable("query cities", err)
	}
	defer rows.Close()

	records := [][]string{{
		dataset.ColLookupCity, dataset.ColLookupState, dataset.ColLat, dataset.ColLng,
	}}

	for rows.Next() {
		var (
			city, state string
			lat, lng    float64
		)
		if err := rows.Scan(&city, &state, &lat, &lng); err != nil {
			return dataframe.DataFrame{}, apperrors.Internal("scan city", err)
		}
		records = append(records, []string{
			city, state,
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lng, 'f', -1, 64),
		})
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, apperrors.Unavailable("read cities", err)
	}

	return loadRecords(records, map[string]series.Type{
		dataset.ColLat: series.Float,
		dataset.ColLng: series.Float,
	})
}

// --------------------------------------------------
// Replace both tables with the given frames
// --------------------------------------------------
func (r *PostgresRepository) Import(ctx context.Context, petitions, cities dataframe.DataFrame) (int64, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, apperrors.Unavailable("begin import", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE petitions, city_coordinates RESTART IDENTITY`); err != nil {
		return 0, 0, apperrors.Internal("truncate tables", err)
	}

	np, err := tx.CopyFrom(ctx,
		pgx.Identifier{"petitions"},
		[]string{"year", "employer_name", "job_title", "prevailing_wage", "city", "state"},
		pgx.CopyFromRows(petitionRows(petitions)),
	)
	if err != nil {
		return 0, 0, apperrors.Internal("copy petitions", err)
	}

	nc, err := tx.CopyFrom(ctx,
		pgx.Identifier{"city_coordinates"},
		[]string{"city", "state_name", "lat", "lng"},
		pgx.CopyFromRows(cityRows(cities)),
	)
	if err != nil {
		return 0, 0, apperrors.Internal("copy cities", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, apperrors.Internal("commit import", err)
	}
	return np, nc, nil
}

func petitionRows(df dataframe.DataFrame) [][]any {
	years := df.Col(dataset.ColYear).Float()
	employers := df.Col(dataset.ColEmployer).Records()
	titles := df.Col(dataset.ColJobTitle).Records()
	wages := df.Col(dataset.ColWage).Float()
	cities := df.Col(dataset.ColCity).Records()
	states := df.Col(dataset.ColState).Records()

	out := make([][]any, df.Nrow())
	for i := range out {
		var year, wage any
		if !math.IsNaN(years[i]) {
			year = int32(years[i])
		}
		if !math.IsNaN(wages[i]) && !math.IsInf(wages[i], 0) {
			wage = wages[i]
		}
		out[i] = []any{year, employers[i], titles[i], wage, cities[i], states[i]}
	}
	return out
}

func cityRows(df dataframe.DataFrame) [][]any {
	cities := df.Col(dataset.ColLookupCity).Records()
	states := df.Col(dataset.ColLookupState).Records()
	lats := df.Col(dataset.ColLat).Float()
	lngs := df.Col(dataset.ColLng).Float()

	out := make([][]any, 0, df.Nrow())
	for i := range cities {
		if math.IsNaN(lats[i]) || math.IsNaN(lngs[i]) {
			continue
		}
		out = append(out, []any{cities[i], states[i], lats[i], lngs[i]})
	}
	return out
}

func loadRecords(records [][]string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if len(records) < 2 {
		return dataframe.DataFrame{}, apperrors.NotFound("no rows imported yet", nil)
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return df, apperrors.Internal("build frame", df.Err)
	}
	return df, nil
}

func formatInt(v *int32) string {
	if v == nil {
		return "NaN"
	}
	return strconv.Itoa(int(*v))
}

func formatFloat(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
