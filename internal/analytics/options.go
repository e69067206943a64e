package analytics

import (
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
	"github.com/namwkim/dataviz-storytelling/internal/dataset"
	"github.com/namwkim/dataviz-storytelling/internal/petition"
)

// Measure is what a panel aggregates: a petition count or the wage.
type Measure string

const (
	MeasurePetitions Measure = "petitions"
	MeasureWage      Measure = "wage"
)

// Measures in widget order.
var Measures = []Measure{MeasurePetitions, MeasureWage}

// Label is the text shown in the measure dropdown.
func (m Measure) Label() string {
	switch m {
	case MeasureWage:
		return "Salary (Prevailing Wage)"
	default:
		return "Number of Petitions"
	}
}

// Column is the field name the aggregated value is published under.
func (m Measure) Column() string {
	switch m {
	case MeasureWage:
		return "Prevailing Wage"
	default:
		return "Count of Petitions"
	}
}

// ParseMeasure accepts either the key or the dropdown label.
func ParseMeasure(s string) (Measure, error) {
	for _, m := range Measures {
		if matches(s, string(m), m.Label()) {
			return m, nil
		}
	}
	return "", apperrors.InvalidInput("unknown measure "+quote(s), nil)
}

// Dimension is the categorical field used by the breakdown panels.
type Dimension string

const (
	DimensionJobTitle Dimension = "job_title"
	DimensionEmployer Dimension = "employer"
)

var Dimensions = []Dimension{DimensionJobTitle, DimensionEmployer}

func (d Dimension) Label() string {
	switch d {
	case DimensionEmployer:
		return "Employer Name"
	default:
		return "Job Title"
	}
}

func (d Dimension) Column() string {
	switch d {
	case DimensionEmployer:
		return dataset.ColEmployer
	default:
		return dataset.ColJobTitle
	}
}

// Of returns the petition's value for the dimension.
func (d Dimension) Of(p petition.Petition) string {
	if d == DimensionEmployer {
		return p.Employer
	}
	return p.JobTitle
}

func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if matches(s, string(d), d.Label(), d.Column()) {
			return d, nil
		}
	}
	return "", apperrors.InvalidInput("unknown dimension "+quote(s), nil)
}

func matches(s string, names ...string) bool {
	s = strings.TrimSpace(s)
	for _, name := range names {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return `"` + s + `"`
}
