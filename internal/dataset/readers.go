package dataset

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Petition columns.
const (
	ColYear     = "YEAR"
	ColEmployer = "EMPLOYER_NAME"
	ColJobTitle = "JOB_TITLE"
	ColWage     = "PREVAILING_WAGE"
	ColCity     = "CITY"
	ColState    = "STATE"
)

// City lookup columns.
const (
	ColLookupCity  = "city"
	ColLookupState = "state_name"
	ColLat         = "lat"
	ColLng         = "lng"
)

// Cars columns.
const (
	ColCarName    = "Name"
	ColHorsepower = "Horsepower"
	ColMPG        = "Miles_per_Gallon"
	ColOrigin     = "Origin"
)

var (
	petitionColumns = []string{ColYear, ColEmployer, ColJobTitle, ColWage, ColCity, ColState}
	cityColumns     = []string{ColLookupCity, ColLookupState, ColLat, ColLng}
	carColumns      = []string{ColCarName, ColHorsepower, ColMPG, ColOrigin}
)

// ReadPetitions parses the petition CSV.
func ReadPetitions(r io.Reader) (dataframe.DataFrame, error) {
	return readCSV(r, "petitions", petitionColumns, map[string]series.Type{
		ColYear: series.Int,
		ColWage: series.Float,
	})
}

// ReadCities parses the city coordinate lookup CSV.
func ReadCities(r io.Reader) (dataframe.DataFrame, error) {
	return readCSV(r, "cities", cityColumns, map[string]series.Type{
		ColLat: series.Float,
		ColLng: series.Float,
	})
}

// ReadCars parses the cars tutorial dataset.
func ReadCars(r io.Reader) (dataframe.DataFrame, error) {
	return readCSV(r, "cars", carColumns, map[string]series.Type{
		ColHorsepower:   series.Float,
		ColMPG:          series.Float,
		"Cylinders":     series.Float,
		"Displacement":  series.Float,
		"Weight_in_lbs": series.Float,
		"Acceleration":  series.Float,
	})
}

// LoadFile opens name from src and parses it with read.
func LoadFile(ctx context.Context, src Source, name string, read func(io.Reader) (dataframe.DataFrame, error)) (dataframe.DataFrame, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	return read(rc)
}

func readCSV(r io.Reader, what string, required []string, types map[string]series.Type) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return df, apperrors.InvalidInput("parse "+what+" csv", df.Err)
	}

	if missing := missingColumns(df, required); len(missing) > 0 {
		return df, apperrors.InvalidInput(
			fmt.Sprintf("%s csv is missing columns: %s", what, strings.Join(missing, ", ")),
			nil,
		)
	}
	return df, nil
}

func missingColumns(df dataframe.DataFrame, required []string) []string {
	have := make(map[string]bool)
	for _, name := range df.Names() {
		have[name] = true
	}
	var missing []string
	for _, name := range required {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
