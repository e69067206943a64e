package petition

import (
	"sort"
	"time"
)

// Petition is one cleaned H1B petition joined with its city coordinates.
type Petition struct {
	Year      int     `json:"year"`
	Employer  string  `json:"employer_name"`
	JobTitle  string  `json:"job_title"`
	Wage      float64 `json:"prevailing_wage"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
	HasCoords bool    `json:"has_coords"`
}

// Stats describes what Prepare did to the raw petitions.
type Stats struct {
	Loaded      int     `json:"loaded"`
	Matched     int     `json:"matched"`
	Unmatched   int     `json:"unmatched"`
	InvalidWage int     `json:"invalid_wage"`
	Outliers    int     `json:"outliers"`
	Kept        int     `json:"kept"`
	WageMean    float64 `json:"wage_mean"`
	WageStdDev  float64 `json:"wage_std_dev"`
}

// Dataset is the prepared petition set every dashboard request starts from.
type Dataset struct {
	Rows     []Petition `json:"-"`
	Stats    Stats      `json:"stats"`
	LoadedAt time.Time  `json:"loaded_at"`
}

// Years returns the distinct years present, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, p := range d.Rows {
		if p.Year != 0 && !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Ints(years)
	return years
}
