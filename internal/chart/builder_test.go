package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"testing"

	"dataviz/domain/table"
	"dataviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, header []string, rows ...[]table.Cell) *table.Table {
	t.Helper()
	tbl, err := table.New(header, rows)
	require.NoError(t, err)
	return tbl
}

func sampleTable(t *testing.T) *table.Table {
	return mustTable(t, []string{"x", "y", "label"},
		[]table.Cell{table.Number(1), table.Number(2), table.Text("a")},
		[]table.Cell{table.Number(2), table.Number(4), table.Text("b")},
		[]table.Cell{table.Number(3), table.Number(9), table.Text("c")},
	)
}

func TestBuildTitlesPerKind(t *testing.T) {
	tests := []struct {
		kind      Kind
		title     string
		traceType string
	}{
		{Scatter, "Scatter Plot of y vs x", "scatter"},
		{Line, "Line Chart of y vs x", "scatter"},
		{Bar, "Bar Chart of y vs x", "bar"},
		{Area, "Area Chart of y vs x", "scatter"},
		{Heatmap, "Heatmap of y vs x", "heatmap"},
		{Contour, "Contour Plot of y vs x", "contour"},
		{Pie, "Pie Chart of y by x", "pie"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			spec, err := Build(context.Background(), sampleTable(t), tt.kind, "x", "y")
			require.NoError(t, err)
			assert.Equal(t, tt.title, spec.Title)
			assert.Equal(t, tt.title, spec.Layout.Title.Text)
			require.Len(t, spec.Traces, 1)
			assert.Equal(t, tt.traceType, spec.Traces[0].Type)
			assert.False(t, spec.Placeholder())
		})
	}
}

func TestBuildTraceStyling(t *testing.T) {
	ctx := context.Background()

	scatter, err := Build(ctx, sampleTable(t), Scatter, "x", "y")
	require.NoError(t, err)
	tr := scatter.Traces[0]
	assert.Equal(t, "markers", tr.Mode)
	assert.Equal(t, 10.0, tr.Marker.Size)
	assert.Equal(t, MarkerRGBA, tr.Marker.Color)

	line, err := Build(ctx, sampleTable(t), Line, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "lines+markers", line.Traces[0].Mode)

	area, err := Build(ctx, sampleTable(t), Area, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "tozeroy", area.Traces[0].Fill)

	heat, err := Build(ctx, sampleTable(t), Heatmap, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, DensityScale, heat.Traces[0].ColorScale)
}

func TestBuildFixedLayout(t *testing.T) {
	spec, err := Build(context.Background(), sampleTable(t), Scatter, "x", "y")
	require.NoError(t, err)

	l := spec.Layout
	assert.Equal(t, "plotly_white", l.Template)
	assert.Equal(t, Margin{L: 40, R: 40, T: 50, B: 40}, l.Margin)
	assert.True(t, l.Autosize)
	assert.Equal(t, 500, l.Height)
	assert.True(t, l.ShowLegend)
	assert.Equal(t, Legend{Orientation: "h", YAnchor: "bottom", Y: 1.02, XAnchor: "right", X: 1}, l.Legend)
	assert.Equal(t, "x", l.XAxis.Title.Text)
	assert.Equal(t, "y", l.YAxis.Title.Text)
}

func TestBuildUnknownKindFallsBackToScatter(t *testing.T) {
	spec, err := Build(context.Background(), sampleTable(t), ParseKind("violin"), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, Scatter, spec.Kind)
	assert.Equal(t, "Scatter Plot of y vs x", spec.Title)
}

func TestBuildMissingColumn(t *testing.T) {
	_, err := Build(context.Background(), sampleTable(t), Scatter, "x", "nope")
	require.Error(t, err)
	assert.Equal(t, errors.CodeColumnNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestBuildEmptyColumn(t *testing.T) {
	tbl := mustTable(t, []string{"x", "y"},
		[]table.Cell{table.Number(1), table.Blank()},
		[]table.Cell{table.Number(2), table.Blank()},
	)
	_, err := Build(context.Background(), tbl, Line, "x", "y")
	assert.True(t, errors.HasCode(err, errors.CodeEmptyColumn))
}

func TestBuildDropsNonNumericRows(t *testing.T) {
	tbl := mustTable(t, []string{"x", "y"},
		[]table.Cell{table.Number(1), table.Text("10")},
		[]table.Cell{table.Text("two"), table.Number(20)},
		[]table.Cell{table.Number(3), table.Text("n/a")},
		[]table.Cell{table.Number(4), table.Number(math.Inf(1))},
	)
	spec, err := Build(context.Background(), tbl, Scatter, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 1, Y: 10}}, spec.Points)
}

func TestBuildPieDropsNonNumericAmounts(t *testing.T) {
	tbl := mustTable(t, []string{"category", "amount"},
		[]table.Cell{table.Text("a"), table.Text("1")},
		[]table.Cell{table.Text("b"), table.Text("x")},
	)
	spec, err := Build(context.Background(), tbl, Pie, "category", "amount")
	require.NoError(t, err)

	require.Len(t, spec.Traces, 1)
	assert.Equal(t, []string{"a"}, spec.Traces[0].Labels)
	assert.Equal(t, []Number{1}, spec.Traces[0].Values)
	assert.Nil(t, spec.Layout.XAxis)
}

func TestBuildPieSumsRepeatedLabels(t *testing.T) {
	tbl := mustTable(t, []string{"k", "v"},
		[]table.Cell{table.Text("a"), table.Number(1)},
		[]table.Cell{table.Number(2), table.Number(5)},
		[]table.Cell{table.Text("a"), table.Number(2)},
	)
	spec, err := Build(context.Background(), tbl, Pie, "k", "v")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "2"}, spec.Traces[0].Labels)
	assert.Equal(t, []Number{3, 5}, spec.Traces[0].Values)
}

func TestBuildPlaceholderWhenNothingIsNumeric(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"},
		[]table.Cell{table.Text("red"), table.Text("big")},
		[]table.Cell{table.Text("blue"), table.Text("small")},
	)
	for _, kind := range Kinds {
		if kind == Pie {
			continue
		}
		spec, err := Build(context.Background(), tbl, kind, "a", "b")
		require.NoError(t, err, kind)
		assert.True(t, spec.Placeholder(), kind)
		assert.Equal(t, NoDataTitle, spec.Title)
		require.Len(t, spec.Layout.Annotations, 1)
		assert.Equal(t, NoDataMessage, spec.Layout.Annotations[0].Text)
	}
}

func TestSerializeFigure(t *testing.T) {
	spec, err := Build(context.Background(), sampleTable(t), Bar, "x", "y")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(Serialize(spec)), &doc))

	data := doc["data"].([]interface{})
	require.Len(t, data, 1)
	trace := data[0].(map[string]interface{})
	assert.Equal(t, "bar", trace["type"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, trace["x"])

	layout := doc["layout"].(map[string]interface{})
	assert.Equal(t, "Bar Chart of y vs x", layout["title"].(map[string]interface{})["text"])
	assert.Equal(t, 500.0, layout["height"])
}

func TestSerializeNaNBecomesNull(t *testing.T) {
	spec := &Spec{
		Kind:   Scatter,
		Traces: []Trace{{Type: "scatter", X: []Number{1, Number(math.NaN())}, Y: []Number{Number(math.Inf(-1)), 2}}},
		Layout: baseLayout("t"),
	}
	out := Serialize(spec)
	assert.Contains(t, out, `"x":[1,null]`)
	assert.Contains(t, out, `"y":[null,2]`)
}

func TestSerializePlaceholderHasEmptyData(t *testing.T) {
	spec := &Spec{}
	spec.placeholder(NoDataTitle, NoDataMessage)

	var doc struct {
		Data   []interface{} `json:"data"`
		Layout Layout        `json:"layout"`
	}
	require.NoError(t, json.Unmarshal([]byte(Serialize(spec)), &doc))
	assert.NotNil(t, doc.Data)
	assert.Empty(t, doc.Data)
	assert.Equal(t, NoDataMessage, doc.Layout.Annotations[0].Text)
}

func TestSerializeNeverFails(t *testing.T) {
	out := Serialize(nil)
	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc["error"], "failed to serialize chart")
}

func TestNewDensityCountsEveryPoint(t *testing.T) {
	points := []Point{{0, 0}, {1, 1}, {1, 1}, {2, 2}, {10, 5}}
	d := NewDensity(points)

	rows, cols := d.Counts.Dims()
	assert.Equal(t, len(d.YCenters), rows)
	assert.Equal(t, len(d.XCenters), cols)
	assert.Equal(t, float64(len(points)), d.Total())
	// the maximum lands in the top-right bin
	assert.Equal(t, 1.0, d.Counts.At(rows-1, cols-1))
}

func TestNewDensitySinglePoint(t *testing.T) {
	d := NewDensity([]Point{{3, 4}})
	assert.Equal(t, []float64{3}, d.XCenters)
	assert.Equal(t, []float64{4}, d.YCenters)
	assert.Equal(t, [][]Number{{1}}, d.Rows())
}

func TestRenderPNG(t *testing.T) {
	for _, kind := range []Kind{Scatter, Line, Bar, Pie} {
		spec, err := Build(context.Background(), sampleTable(t), kind, "x", "y")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, RenderPNG(spec, &buf, 640, 400), kind)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), kind)
	}
}

func TestRenderPNGRejectsPlaceholder(t *testing.T) {
	spec := &Spec{}
	spec.placeholder(NoDataTitle, NoDataMessage)
	assert.Error(t, RenderPNG(spec, &bytes.Buffer{}, 0, 0))
}
