// Package chart maps a (kind, x column, y column) selection over a table onto
// a renderable chart specification and serialises it as a Plotly figure.
package chart

import (
	"encoding/json"
	"math"
	"strings"
)

// Kind is the chart type a user selects.
type Kind string

const (
	Scatter Kind = "scatter"
	Line    Kind = "line"
	Bar     Kind = "bar"
	Area    Kind = "area"
	Heatmap Kind = "heatmap"
	Contour Kind = "contour"
	Pie     Kind = "pie"
)

// Kinds lists every supported chart kind in menu order.
var Kinds = []Kind{Scatter, Line, Bar, Area, Heatmap, Contour, Pie}

// ParseKind resolves a kind name; anything unrecognised is a scatter plot.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k
		}
	}
	return Scatter
}

// Presentation constants shared by every chart.
const (
	Template     = "plotly_white"
	Height       = 500
	PrimaryRGB   = "rgb(0, 123, 255)"
	MarkerRGBA   = "rgba(0, 123, 255, 0.8)"
	AreaRGBA     = "rgba(0, 123, 255, 0.3)"
	OutlineRGB   = "rgb(0, 0, 0)"
	DensityScale = "Blues"

	NoDataTitle   = "No Valid Data Points"
	NoDataMessage = "No valid numeric data points found for the selected columns"
	ErrorTitle    = "Error Creating Visualization"
)

// Point is one cleaned (x, y) pair.
type Point struct {
	X float64
	Y float64
}

// Slice is one pie wedge: a label taken from x and a magnitude from y.
type Slice struct {
	Label string
	Value float64
}

// Spec is a chart ready to be serialised or rendered.
type Spec struct {
	Kind    Kind
	XColumn string
	YColumn string
	Points  []Point
	Slices  []Slice

	Title      string
	XLabel     string
	YLabel     string
	Annotation string

	Traces []Trace
	Layout Layout
}

// Placeholder reports whether the spec carries a message instead of data.
func (s *Spec) Placeholder() bool {
	return len(s.Traces) == 0
}

// Figure is the Plotly document shape.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Figure returns the Plotly document for s.
func (s *Spec) Figure() Figure {
	data := s.Traces
	if data == nil {
		data = []Trace{}
	}
	return Figure{Data: data, Layout: s.Layout}
}

// Number is a float64 that serialises non-finite values as null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func numbers(vs []float64) []Number {
	out := make([]Number, len(vs))
	for i, v := range vs {
		out[i] = Number(v)
	}
	return out
}

// Trace is one Plotly trace. Only the fields relevant to its type are set.
type Trace struct {
	Type       string     `json:"type"`
	Mode       string     `json:"mode,omitempty"`
	Name       string     `json:"name,omitempty"`
	X          []Number   `json:"x,omitempty"`
	Y          []Number   `json:"y,omitempty"`
	Z          [][]Number `json:"z,omitempty"`
	Labels     []string   `json:"labels,omitempty"`
	Values     []Number   `json:"values,omitempty"`
	Fill       string     `json:"fill,omitempty"`
	FillColor  string     `json:"fillcolor,omitempty"`
	Marker     *Marker    `json:"marker,omitempty"`
	Line       *Stroke    `json:"line,omitempty"`
	ColorScale string     `json:"colorscale,omitempty"`
	ShowScale  *bool      `json:"showscale,omitempty"`
	Contours   *Contours  `json:"contours,omitempty"`
}

type Marker struct {
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
	Line  *Stroke `json:"line,omitempty"`
}

type Stroke struct {
	Width float64 `json:"width,omitempty"`
	Color string  `json:"color,omitempty"`
}

type Contours struct {
	Coloring string `json:"coloring"`
}

// Layout is the subset of Plotly layout attributes dataviz sets.
type Layout struct {
	Title       Text         `json:"title"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	Template    string       `json:"template"`
	Margin      Margin       `json:"margin"`
	Autosize    bool         `json:"autosize"`
	Height      int          `json:"height"`
	ShowLegend  bool         `json:"showlegend"`
	Legend      Legend       `json:"legend"`
	PaperBG     string       `json:"paper_bgcolor"`
	PlotBG      string       `json:"plot_bgcolor"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Text `json:"title"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Legend struct {
	Orientation string  `json:"orientation"`
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
}

type Annotation struct {
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// baseLayout is the fixed presentation: white theme, legend above the plot
// on the right, 500px tall.
func baseLayout(title string) Layout {
	return Layout{
		Title:      Text{Text: title},
		Template:   Template,
		Margin:     Margin{L: 40, R: 40, T: 50, B: 40},
		Autosize:   true,
		Height:     Height,
		ShowLegend: true,
		Legend: Legend{
			Orientation: "h",
			YAnchor:     "bottom",
			Y:           1.02,
			XAnchor:     "right",
			X:           1,
		},
		PaperBG: "white",
		PlotBG:  "white",
	}
}

func centeredNote(text string) Annotation {
	return Annotation{Text: text, XRef: "paper", YRef: "paper", X: 0.5, Y: 0.5}
}
