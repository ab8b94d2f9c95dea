package chart

import (
	"context"
	"fmt"
	"math"

	"dataviz/domain/table"
	"dataviz/internal/errors"
	"dataviz/internal/logging"
)

// Build turns a column selection into a chart spec.
//
// Both columns must exist and hold at least one value. Both columns are
// coerced to numbers and rows where either side is not a finite number are
// dropped; pie charts are the exception on x, whose values label the slices
// as text. When nothing is left the result is a placeholder spec rather than
// an error.
func Build(ctx context.Context, t *table.Table, kind Kind, xColumn, yColumn string) (*Spec, error) {
	log := logging.WithFields(ctx, "component", "chart", "kind", kind)

	xs, err := t.Column(xColumn)
	if err != nil {
		return nil, err
	}
	ys, err := t.Column(yColumn)
	if err != nil {
		return nil, err
	}
	if allMissing(xs) {
		return nil, errors.EmptyColumn(xColumn)
	}
	if allMissing(ys) {
		return nil, errors.EmptyColumn(yColumn)
	}

	spec := &Spec{Kind: kind, XColumn: xColumn, YColumn: yColumn}
	kept := 0
	if kind == Pie {
		spec.Slices = cleanSlices(xs, ys)
		kept = len(spec.Slices)
	} else {
		spec.Points = cleanPoints(xs, ys)
		kept = len(spec.Points)
	}
	log.Debug("chart rows cleaned",
		"x", xColumn, "y", yColumn, "rows", t.Len(), "kept", kept)

	if kept == 0 {
		log.Warn("no valid data points after cleaning", "x", xColumn, "y", yColumn)
		spec.placeholder(NoDataTitle, NoDataMessage)
		return spec, nil
	}

	if err := spec.buildTraces(); err != nil {
		log.Error("figure creation failed", "error", err)
		spec.placeholder(ErrorTitle, "Error: "+err.Error())
	}
	return spec, nil
}

func allMissing(cells []table.Cell) bool {
	for _, c := range cells {
		if !c.IsMissing() {
			return false
		}
	}
	return true
}

func cleanPoints(xs, ys []table.Cell) []Point {
	points := make([]Point, 0, len(xs))
	for i := range xs {
		x, okX := xs[i].Float()
		y, okY := ys[i].Float()
		if !okX || !okY || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points
}

func cleanSlices(xs, ys []table.Cell) []Slice {
	slices := make([]Slice, 0, len(xs))
	for i := range xs {
		y, ok := ys[i].Float()
		if !ok || math.IsInf(y, 0) || xs[i].IsMissing() {
			continue
		}
		slices = append(slices, Slice{Label: xs[i].String(), Value: y})
	}
	return slices
}

func (s *Spec) placeholder(title, message string) {
	s.Title = title
	s.Annotation = message
	s.Traces = nil
	s.Layout = baseLayout(title)
	s.Layout.Annotations = []Annotation{centeredNote(message)}
}

func (s *Spec) buildTraces() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i], ys[i] = p.X, p.Y
	}

	s.XLabel, s.YLabel = s.XColumn, s.YColumn
	switch s.Kind {
	case Line:
		s.Title = fmt.Sprintf("Line Chart of %s vs %s", s.YColumn, s.XColumn)
		s.Traces = []Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			Name: s.YColumn,
			X:    numbers(xs),
			Y:    numbers(ys),
			Line: &Stroke{Width: 3, Color: PrimaryRGB},
			Marker: &Marker{
				Size:  8,
				Color: PrimaryRGB,
				Line:  &Stroke{Width: 1, Color: OutlineRGB},
			},
		}}
	case Bar:
		s.Title = fmt.Sprintf("Bar Chart of %s vs %s", s.YColumn, s.XColumn)
		s.Traces = []Trace{{
			Type:   "bar",
			Name:   s.YColumn,
			X:      numbers(xs),
			Y:      numbers(ys),
			Marker: &Marker{Color: PrimaryRGB},
		}}
	case Area:
		s.Title = fmt.Sprintf("Area Chart of %s vs %s", s.YColumn, s.XColumn)
		s.Traces = []Trace{{
			Type:      "scatter",
			Mode:      "lines",
			Name:      s.YColumn,
			X:         numbers(xs),
			Y:         numbers(ys),
			Fill:      "tozeroy",
			FillColor: AreaRGBA,
			Line:      &Stroke{Width: 1, Color: PrimaryRGB},
		}}
	case Heatmap:
		s.Title = fmt.Sprintf("Heatmap of %s vs %s", s.YColumn, s.XColumn)
		grid := NewDensity(s.Points)
		s.Traces = []Trace{{
			Type:       "heatmap",
			Name:       "count",
			X:          numbers(grid.XCenters),
			Y:          numbers(grid.YCenters),
			Z:          grid.Rows(),
			ColorScale: DensityScale,
		}}
	case Contour:
		s.Title = fmt.Sprintf("Contour Plot of %s vs %s", s.YColumn, s.XColumn)
		grid := NewDensity(s.Points)
		hide := false
		s.Traces = []Trace{{
			Type:      "contour",
			Name:      "count",
			X:         numbers(grid.XCenters),
			Y:         numbers(grid.YCenters),
			Z:         grid.Rows(),
			ShowScale: &hide,
			Contours:  &Contours{Coloring: "lines"},
		}}
	case Pie:
		s.Title = fmt.Sprintf("Pie Chart of %s by %s", s.YColumn, s.XColumn)
		s.XLabel, s.YLabel = "", ""
		labels, values := pieSlices(s.Slices)
		s.Traces = []Trace{{
			Type:   "pie",
			Labels: labels,
			Values: numbers(values),
		}}
	default:
		s.Kind = Scatter
		s.Title = fmt.Sprintf("Scatter Plot of %s vs %s", s.YColumn, s.XColumn)
		s.Traces = []Trace{{
			Type: "scatter",
			Mode: "markers",
			Name: s.YColumn,
			X:    numbers(xs),
			Y:    numbers(ys),
			Marker: &Marker{
				Size:  10,
				Color: MarkerRGBA,
				Line:  &Stroke{Width: 1, Color: OutlineRGB},
			},
		}}
	}

	s.Layout = baseLayout(s.Title)
	if s.XLabel != "" {
		s.Layout.XAxis = &Axis{Title: Text{Text: s.XLabel}}
		s.Layout.YAxis = &Axis{Title: Text{Text: s.YLabel}}
	}
	return nil
}

// pieSlices sums values that share a label, keeping first-seen label order.
func pieSlices(slices []Slice) ([]string, []float64) {
	index := make(map[string]int)
	var labels []string
	var values []float64
	for _, sl := range slices {
		i, ok := index[sl.Label]
		if !ok {
			i = len(labels)
			index[sl.Label] = i
			labels = append(labels, sl.Label)
			values = append(values, 0)
		}
		values[i] += sl.Value
	}
	return labels, values
}
