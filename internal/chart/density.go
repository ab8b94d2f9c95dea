package chart

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxDensityBins caps the grid resolution on each axis.
const maxDensityBins = 50

// Density is a 2-D histogram of points: Counts has one row per y bin and
// one column per x bin.
type Density struct {
	XCenters []float64
	YCenters []float64
	Counts   *mat.Dense
}

// NewDensity bins points on an equal-width grid whose resolution follows
// Sturges' rule on each axis.
func NewDensity(points []Point) *Density {
	n := len(points)
	bins := densityBins(n)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	xEdges := binEdges(xs, bins)
	yEdges := binEdges(ys, bins)

	counts := mat.NewDense(bins, bins, nil)
	for i := range points {
		col := binIndex(xEdges, xs[i])
		row := binIndex(yEdges, ys[i])
		counts.Set(row, col, counts.At(row, col)+1)
	}

	return &Density{
		XCenters: centers(xEdges),
		YCenters: centers(yEdges),
		Counts:   counts,
	}
}

// Rows returns Counts in the row-major nested form Plotly expects for z.
func (d *Density) Rows() [][]Number {
	r, _ := d.Counts.Dims()
	out := make([][]Number, r)
	for i := 0; i < r; i++ {
		out[i] = numbers(mat.Row(nil, i, d.Counts))
	}
	return out
}

// Total is the number of points binned.
func (d *Density) Total() float64 {
	return mat.Sum(d.Counts)
}

func densityBins(n int) int {
	if n < 2 {
		return 1
	}
	b := int(math.Ceil(math.Log2(float64(n)))) + 1
	if b > maxDensityBins {
		b = maxDensityBins
	}
	return b
}

// binEdges returns bins+1 increasing edges spanning values. A constant axis
// gets a unit-wide range centred on its value.
func binEdges(values []float64, bins int) []float64 {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	return edges
}

// binIndex places v in its bin; the top edge belongs to the last bin.
func binIndex(edges []float64, v float64) int {
	last := len(edges) - 2
	for i := 0; i < last; i++ {
		if v < edges[i+1] {
			return i
		}
	}
	return last
}

func centers(edges []float64) []float64 {
	out := make([]float64, len(edges)-1)
	for i := range out {
		out[i] = (edges[i] + edges[i+1]) / 2
	}
	return out
}
