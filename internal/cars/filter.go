package cars

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
)

// AllOrigins disables the origin filter.
const AllOrigins = "All"

// Chart is the explorer's chart type.
type Chart string

const (
	ChartScatterplot Chart = "scatterplot"
	ChartHistogram   Chart = "histogram"
)

var Charts = []Chart{ChartScatterplot, ChartHistogram}

func (c Chart) Label() string {
	if c == ChartHistogram {
		return "Histogram"
	}
	return "Scatterplot"
}

// Filter is the explorer widget state.
type Filter struct {
	Origin string `json:"origin"`
	HPMin  int    `json:"hp_min"`
	HPMax  int    `json:"hp_max"`
	Chart  Chart  `json:"chart"`
}

func DefaultFilter() Filter {
	return Filter{Origin: AllOrigins, HPMin: 50, HPMax: 200, Chart: ChartScatterplot}
}

type Query struct {
	Origin string `form:"origin"`
	HPMin  string `form:"hp_min"`
	HPMax  string `form:"hp_max"`
	Chart  string `form:"chart"`
}

// ParseFilter validates q; blank fields keep their defaults.
func ParseFilter(q Query) (Filter, error) {
	f := DefaultFilter()

	if o := strings.TrimSpace(q.Origin); o != "" {
		f.Origin = o
	}

	var err error
	if f.HPMin, err = parseHP("hp_min", q.HPMin, f.HPMin); err != nil {
		return f, err
	}
	if f.HPMax, err = parseHP("hp_max", q.HPMax, f.HPMax); err != nil {
		return f, err
	}
	if f.HPMin > f.HPMax {
		return f, apperrors.InvalidInput("hp_min must not exceed hp_max", nil)
	}

	if q.Chart != "" {
		f.Chart = ""
		for _, c := range Charts {
			if strings.EqualFold(strings.TrimSpace(q.Chart), string(c)) {
				f.Chart = c
			}
		}
		if f.Chart == "" {
			return f, apperrors.InvalidInput(fmt.Sprintf("unknown chart %q", q.Chart), nil)
		}
	}

	return f, nil
}

// Summary describes the active filter.
func (f Filter) Summary() string {
	return fmt.Sprintf("Showing results for %s with horsepower between (%d, %d)", f.Origin, f.HPMin, f.HPMax)
}

func parseHP(name, s string, fallback int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s %q", name, s), err)
	}
	return v, nil
}
