package chart

import (
	"io"
	"math"

	"dataviz/internal/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG preview size.
const (
	PreviewWidth  = 900
	PreviewHeight = Height
)

var (
	primaryColor = drawing.Color{R: 0, G: 123, B: 255, A: 255}
	markerColor  = drawing.Color{R: 0, G: 123, B: 255, A: 204}
	areaColor    = drawing.Color{R: 0, G: 123, B: 255, A: 77}
)

// RenderPNG draws a static preview of spec. Heatmap and contour specs are
// drawn as the underlying point cloud.
func RenderPNG(spec *Spec, w io.Writer, width, height int) error {
	if spec == nil || spec.Placeholder() {
		return errors.InvalidInput("chart has no data points to render")
	}
	if width <= 0 {
		width = PreviewWidth
	}
	if height <= 0 {
		height = PreviewHeight
	}

	var err error
	switch spec.Kind {
	case Bar:
		err = renderBars(spec, w, width, height)
	case Pie:
		err = renderPie(spec, w, width, height)
	default:
		err = renderXY(spec, w, width, height)
	}
	if err != nil {
		return errors.Wrap(err, "failed to render chart")
	}
	return nil
}

func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

func renderXY(spec *Spec, w io.Writer, width, height int) error {
	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	// go-chart needs two x values to lay out an axis
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	var style gochart.Style
	switch spec.Kind {
	case Line:
		style = gochart.Style{StrokeColor: primaryColor, StrokeWidth: 3, DotColor: primaryColor, DotWidth: 4}
	case Area:
		style = gochart.Style{StrokeColor: primaryColor, StrokeWidth: 1, FillColor: areaColor}
	default:
		style = pointStyle(markerColor)
	}

	graph := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 40, Right: 40, Bottom: 40}},
		XAxis:      gochart.XAxis{Name: spec.XLabel, Range: paddedRange(xs)},
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: paddedRange(ys)},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    spec.YColumn,
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
		},
	}
	return graph.Render(gochart.PNG, w)
}

// paddedRange widens a zero-width range, which go-chart refuses to draw.
func paddedRange(values []float64) gochart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func renderBars(spec *Spec, w io.Writer, width, height int) error {
	bars := make([]gochart.Value, len(spec.Points))
	for i, p := range spec.Points {
		bars[i] = gochart.Value{
			Label: gochart.FloatValueFormatter(p.X),
			Value: p.Y,
			Style: gochart.Style{FillColor: primaryColor, StrokeColor: primaryColor},
		}
	}

	barWidth := (width - 80) / (2 * len(bars))
	if barWidth < 2 {
		barWidth = 2
	}
	graph := gochart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 50}},
		Bars:       bars,
	}
	return graph.Render(gochart.PNG, w)
}

func renderPie(spec *Spec, w io.Writer, width, height int) error {
	labels, values := pieSlices(spec.Slices)
	var slices []gochart.Value
	for i, v := range values {
		// wedges need a positive magnitude
		if v > 0 {
			slices = append(slices, gochart.Value{Label: labels[i], Value: v})
		}
	}
	if len(slices) == 0 {
		return errors.InvalidInput("pie chart has no positive values")
	}

	graph := gochart.PieChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: slices,
	}
	return graph.Render(gochart.PNG, w)
}
