package chart

import "math"

// Schema is the Vega-Lite version every spec targets.
const Schema = "https://vega.github.io/schema/vega-lite/v5.json"

// Row is one inlined data record keyed by field name.
type Row map[string]any

// Spec is the subset of a Vega-Lite view specification the dashboards use.
type Spec struct {
	Schema      string      `json:"$schema,omitempty"`
	Title       string      `json:"title,omitempty"`
	Width       any         `json:"width,omitempty"`
	Height      any         `json:"height,omitempty"`
	Data        *Data       `json:"data,omitempty"`
	Mark        *Mark       `json:"mark,omitempty"`
	Encoding    *Encoding   `json:"encoding,omitempty"`
	Params      []Param     `json:"params,omitempty"`
	Projection  *Projection `json:"projection,omitempty"`
	Layer       []Spec      `json:"layer,omitempty"`
	HConcat     []Spec      `json:"hconcat,omitempty"`
	Description string      `json:"description,omitempty"`
}

type Data struct {
	Values []Row   `json:"values,omitempty"`
	URL    string  `json:"url,omitempty"`
	Format *Format `json:"format,omitempty"`
}

type Format struct {
	Type    string `json:"type"`
	Feature string `json:"feature,omitempty"`
}

type Mark struct {
	Type    string  `json:"type"`
	Point   bool    `json:"point,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Fill    string  `json:"fill,omitempty"`
	Stroke  string  `json:"stroke,omitempty"`
	Tooltip bool    `json:"tooltip,omitempty"`
}

type Encoding struct {
	X         *Channel  `json:"x,omitempty"`
	Y         *Channel  `json:"y,omitempty"`
	Color     *Channel  `json:"color,omitempty"`
	Size      *Channel  `json:"size,omitempty"`
	Longitude *Channel  `json:"longitude,omitempty"`
	Latitude  *Channel  `json:"latitude,omitempty"`
	Tooltip   []Channel `json:"tooltip,omitempty"`
}

type Channel struct {
	Field     string `json:"field,omitempty"`
	Type      string `json:"type,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
	Bin       bool   `json:"bin,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Title     string `json:"title,omitempty"`
	Scale     *Scale `json:"scale,omitempty"`
}

type Scale struct {
	Range  []float64 `json:"range,omitempty"`
	Scheme string    `json:"scheme,omitempty"`
}

// Param declares a selection. Select is either a selection type name or a
// *Selection.
type Param struct {
	Name   string `json:"name"`
	Select any    `json:"select"`
	Bind   string `json:"bind,omitempty"`
}

type Selection struct {
	Type      string   `json:"type"`
	Encodings []string `json:"encodings,omitempty"`
}

type Projection struct {
	Type string `json:"type"`
}

// Step sizes a discrete axis per band instead of in total.
type Step struct {
	Step int `json:"step"`
}

// Container stretches a view to its parent element.
const Container = "container"

// Num returns v, or nil when v cannot be encoded as a JSON number.
func Num(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func field(name, typ string) *Channel {
	return &Channel{Field: name, Type: typ}
}

func tooltips(fields ...string) []Channel {
	out := make([]Channel, len(fields))
	for i, f := range fields {
		out[i] = Channel{Field: f}
	}
	return out
}
