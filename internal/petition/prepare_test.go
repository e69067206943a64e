package petition

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"github.com/go-gota/gota/dataframe"
)

const citiesCSV = `city,state_name,lat,lng
Seattle,Washington,47.6211,-122.3244
 boston ,Massachusetts,42.3188,-71.0846
Austin,Texas,30.3004,-97.7522
`

func mustPetitions(t *testing.T, body string) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.ReadPetitions(strings.NewReader(
		"YEAR,EMPLOYER_NAME,JOB_TITLE,PREVAILING_WAGE,CITY,STATE\n" + body,
	))
	if err != nil {
		t.Fatalf("read petitions: %v", err)
	}
	return df
}

func mustCities(t *testing.T) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.ReadCities(strings.NewReader(citiesCSV))
	if err != nil {
		t.Fatalf("read cities: %v", err)
	}
	return df
}

func TestPrepare_JoinsCoordinates(t *testing.T) {
	petitions := mustPetitions(t, strings.Join([]string{
		`2016,ACME,DATA SCIENTIST,100000,SEATTLE ,WASHINGTON`,
		`2016,ACME,ANALYST,90000, BOSTON, MASSACHUSETTS `,
		`2017,INITECH,ENGINEER,95000,NOWHERE,NEVADA`,
	}, "\n"))

	rows, st, err := Prepare(petitions, mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if st.Matched != 2 || st.Unmatched != 1 {
		t.Errorf("expected 2 matched and 1 unmatched, got %+v", st)
	}

	if rows[0].City != "SEATTLE" || !rows[0].HasCoords || rows[0].Lat != 47.6211 {
		t.Errorf("seattle row not joined: %+v", rows[0])
	}
	if rows[1].State != "MASSACHUSETTS" || !rows[1].HasCoords || rows[1].Lng != -71.0846 {
		t.Errorf("boston row not joined: %+v", rows[1])
	}
	if rows[2].HasCoords {
		t.Errorf("unknown city must not get coordinates: %+v", rows[2])
	}
	if rows[2].Year != 2017 {
		t.Errorf("expected year 2017, got %d", rows[2].Year)
	}
}

func TestPrepare_DropsWageOutliers(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("2016,ACME %d,ENGINEER,100,AUSTIN,TEXAS", i))
	}
	lines = append(lines, "2016,BIGCO,CEO,10000,AUSTIN,TEXAS")

	rows, st, err := Prepare(mustPetitions(t, strings.Join(lines, "\n")), mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st.Outliers != 1 || st.Kept != 20 {
		t.Fatalf("expected 1 outlier and 20 kept, got %+v", st)
	}
	for _, p := range rows {
		if p.Employer == "BIGCO" {
			t.Error("outlier wage should have been removed")
		}
	}
}

func TestPrepare_ZeroSpreadKeepsEverything(t *testing.T) {
	petitions := mustPetitions(t, strings.Join([]string{
		`2016,A,ENGINEER,5000,AUSTIN,TEXAS`,
		`2017,B,ENGINEER,5000,AUSTIN,TEXAS`,
		`2018,C,ENGINEER,5000,AUSTIN,TEXAS`,
	}, "\n"))

	rows, st, err := Prepare(petitions, mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 || st.Outliers != 0 {
		t.Errorf("expected every row kept, got %d rows, %+v", len(rows), st)
	}
}

func TestPrepare_DropsMissingWages(t *testing.T) {
	petitions := mustPetitions(t, strings.Join([]string{
		`2016,A,ENGINEER,,AUSTIN,TEXAS`,
		`2016,B,ENGINEER,7000,AUSTIN,TEXAS`,
	}, "\n"))

	rows, st, err := Prepare(petitions, mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.InvalidWage != 1 || len(rows) != 1 || rows[0].Employer != "B" {
		t.Errorf("expected the blank wage dropped, got %+v %+v", rows, st)
	}
}

func TestZScores(t *testing.T) {
	z, mean, sd := ZScores([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if mean != 5 {
		t.Errorf("expected mean 5, got %v", mean)
	}
	if math.Abs(sd-2) > 1e-9 {
		t.Errorf("expected population std 2, got %v", sd)
	}
	if math.Abs(z[0]+1.5) > 1e-9 || math.Abs(z[7]-2) > 1e-9 {
		t.Errorf("unexpected scores %v", z)
	}

	if z, _, sd := ZScores(nil); len(z) != 0 || sd != 0 {
		t.Error("empty input should yield no scores")
	}
}

func TestPrepare_MissingCategoriesAreBlank(t *testing.T) {
	petitions := mustPetitions(t, strings.Join([]string{
		`2016,ACME,ENGINEER,5000,AUSTIN,TEXAS`,
		`2016,NA,ENGINEER,6000,AUSTIN,TEXAS`,
		`2017,ACME,NA,7000,AUSTIN,NA`,
	}, "\n"))

	rows, _, err := Prepare(petitions, mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].Employer != "ACME" || rows[0].State != "TEXAS" {
		t.Errorf("present values must survive: %+v", rows[0])
	}
	if rows[1].Employer != "" {
		t.Errorf("expected NA employer to be blank, got %q", rows[1].Employer)
	}
	if rows[2].JobTitle != "" || rows[2].State != "" {
		t.Errorf("expected NA job title and state to be blank, got %+v", rows[2])
	}
	if rows[2].HasCoords {
		t.Error("a row without a state cannot match the lookup")
	}
}

func TestPrepare_CutoffIsInclusive(t *testing.T) {
	// Nine zeros and 1000 put the last wage at exactly z = 3.
	var lines []string
	for i := 0; i < 9; i++ {
		lines = append(lines, fmt.Sprintf("2016,ACME %d,ENGINEER,0,AUSTIN,TEXAS", i))
	}
	lines = append(lines, "2016,BIGCO,CEO,1000,AUSTIN,TEXAS")

	rows, st, err := Prepare(mustPetitions(t, strings.Join(lines, "\n")), mustCities(t), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Outliers != 1 || len(rows) != 9 {
		t.Errorf("expected the |z| == 3 row dropped, got %d rows, %+v", len(rows), st)
	}
}

func TestZScores_ExactPopulationSpread(t *testing.T) {
	xs := make([]float64, 17)
	xs[16] = 17

	z, mean, sd := ZScores(xs)
	if mean != 1 || sd != 4 {
		t.Errorf("expected mean 1 and std 4, got %v and %v", mean, sd)
	}
	if z[16] != 4 {
		t.Errorf("expected an exact score of 4, got %v", z[16])
	}

	z, _, _ = ZScores([]float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1000})
	if z[9] != 3 {
		t.Errorf("expected an exact score of 3, got %v", z[9])
	}
}
