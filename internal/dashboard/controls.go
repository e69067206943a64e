package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/analytics"
	"github.com/namwkim/dataviz-storytelling/internal/apperrors"
)

// View picks what the geographical panel draws.
type View string

const (
	ViewMap     View = "map"
	ViewBoxplot View = "boxplot"
)

var Views = []View{ViewMap, ViewBoxplot}

func (v View) Label() string {
	if v == ViewBoxplot {
		return "Boxplot"
	}
	return "Map"
}

func ParseView(s string) (View, error) {
	for _, v := range Views {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", apperrors.InvalidInput(`unknown view "`+s+`"`, nil)
}

// Controls is the widget state of one dashboard interaction.
type Controls struct {
	Measure       analytics.Measure   `json:"measure"`
	Category      analytics.Dimension `json:"category"`
	View          View                `json:"view"`
	SecondMeasure analytics.Measure   `json:"second_measure"`
	Years         []int               `json:"years,omitempty"`
}

// DefaultControls selects the first option of every widget.
func DefaultControls() Controls {
	return Controls{
		Measure:       analytics.Measures[0],
		Category:      analytics.Dimensions[0],
		View:          Views[0],
		SecondMeasure: analytics.Measures[0],
	}
}

// Query is the raw widget state as it arrives on the URL.
type Query struct {
	Measure       string `form:"measure"`
	Category      string `form:"category"`
	View          string `form:"view"`
	SecondMeasure string `form:"second_measure"`
	Years         string `form:"years"`
}

// ParseControls validates q. Blank fields take their defaults; values may be
// option keys or the labels shown in the widgets.
func ParseControls(q Query) (Controls, error) {
	c := DefaultControls()
	var err error

	if q.Measure != "" {
		if c.Measure, err = analytics.ParseMeasure(q.Measure); err != nil {
			return c, err
		}
	}
	if q.Category != "" {
		if c.Category, err = analytics.ParseDimension(q.Category); err != nil {
			return c, err
		}
	}
	if q.View != "" {
		if c.View, err = ParseView(q.View); err != nil {
			return c, err
		}
	}
	if q.SecondMeasure != "" {
		if c.SecondMeasure, err = analytics.ParseMeasure(q.SecondMeasure); err != nil {
			return c, err
		}
	}
	if c.Years, err = parseYears(q.Years); err != nil {
		return c, err
	}

	return c, nil
}

// Key identifies the rendered result of c.
func (c Controls) Key() string {
	years := make([]string, len(c.Years))
	for i, y := range c.Years {
		years[i] = strconv.Itoa(y)
	}
	return strings.Join([]string{
		"h1b",
		"m=" + string(c.Measure),
		"c=" + string(c.Category),
		"v=" + string(c.View),
		"s=" + string(c.SecondMeasure),
		"y=" + strings.Join(years, ","),
	}, ":")
}

// parseYears reads a comma separated year list, sorted and de-duplicated.
func parseYears(s string) ([]int, error) {
	seen := make(map[int]bool)
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y <= 0 {
			return nil, apperrors.InvalidInput(`invalid year "`+part+`"`, err)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}
