package profiling

import (
	"encoding/json"
	"testing"

	"dataviz/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nums(vs ...float64) []table.Cell {
	out := make([]table.Cell, len(vs))
	for i, v := range vs {
		out[i] = table.Number(v)
	}
	return out
}

func texts(vs ...string) []table.Cell {
	out := make([]table.Cell, len(vs))
	for i, v := range vs {
		out[i] = table.Text(v)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		cells []table.Cell
		want  Classification
	}{
		{"numbers", nums(1, 2, 3), Numeric},
		{"numeric text", texts("1", " 2.5", "-3"), Numeric},
		{"numbers with blanks", append(nums(1), table.Blank(), table.Text("4")), Numeric},
		{"all blank", []table.Cell{table.Blank(), table.Blank()}, Numeric},
		{"empty column", nil, Numeric},
		{"dates", texts("2024-01-02", "2023-12-31", ""), Datetime},
		{"slash dates", texts("01/02/2024", "12/31/2023"), Datetime},
		{"mixed", texts("1", "apple"), Categorical},
		{"number and date", append(nums(5), table.Text("2024-01-01")), Categorical},
		{"words", texts("red", "blue"), Categorical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.cells))
		})
	}
}

func TestDescribeNumeric(t *testing.T) {
	s := Describe(nums(1, 2, 3, 4, 5))
	require.Equal(t, Numeric, s.Type)
	require.NotNil(t, s.Numeric)

	assert.Equal(t, 1.0, s.Numeric.Min)
	assert.Equal(t, 5.0, s.Numeric.Max)
	assert.Equal(t, 3.0, s.Numeric.Mean)
	assert.Equal(t, 3.0, s.Numeric.Median)
	require.NotNil(t, s.Numeric.Std)
	assert.InDelta(t, 1.5811, *s.Numeric.Std, 1e-4)
}

func TestDescribeNumericSingleValueHasNullStd(t *testing.T) {
	s := Describe(nums(7))
	require.NotNil(t, s.Numeric)
	assert.Nil(t, s.Numeric.Std)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"numeric","count":1,"min":7,"max":7,"mean":7,"median":7,"std":null}`, string(out))
}

func TestDescribeEmptyNumericColumnReportsError(t *testing.T) {
	s := Describe([]table.Cell{table.Blank(), table.Blank()})
	assert.Equal(t, Numeric, s.Type)
	assert.Nil(t, s.Numeric)
	assert.Contains(t, s.Error, "statistics unavailable")

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"error":"statistics unavailable`)
}

func TestDescribeDates(t *testing.T) {
	s := Describe(texts("2024-03-01", "2023-12-31", "2024-01-15 08:30:00"))
	require.Equal(t, Datetime, s.Type)
	require.NotNil(t, s.Datetime)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"datetime","count":3,"min":"2023-12-31T00:00:00","max":"2024-03-01T00:00:00"}`, string(out))
}

func TestDescribeCategoriesTopFiveWithStableTies(t *testing.T) {
	cells := texts("b", "a", "c", "a", "d", "e", "f", "b", "g", "a")
	s := Describe(cells)
	require.Equal(t, Categorical, s.Type)

	assert.Equal(t, ValueCounts{
		{Value: "a", Count: 3},
		{Value: "b", Count: 2},
		{Value: "c", Count: 1},
		{Value: "d", Count: 1},
		{Value: "e", Count: 1},
	}, s.Top)

	out, err := json.Marshal(s.Top)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2,"c":1,"d":1,"e":1}`, string(out))
}

func TestDescribeColumnUnknown(t *testing.T) {
	tbl, err := table.New([]string{"a"}, [][]table.Cell{{table.Number(1)}})
	require.NoError(t, err)

	_, err = DescribeColumn(tbl, "b")
	assert.Error(t, err)

	s, err := DescribeColumn(tbl, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
}

func TestClassifyTable(t *testing.T) {
	tbl, err := table.New([]string{"n", "c"}, [][]table.Cell{
		{table.Number(1), table.Text("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]Classification{"n": Numeric, "c": Categorical}, ClassifyTable(tbl))
}

func TestAnalyzeDistribution(t *testing.T) {
	data := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 40}
	d, err := AnalyzeDistribution(data, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, d.Outliers)
	require.Len(t, d.Histogram, 4)
	total := 0
	for _, b := range d.Histogram {
		total += b.Count
	}
	assert.Equal(t, len(data), total)
	assert.Equal(t, 1.0, d.Histogram[0].Lower)
	assert.Equal(t, 1, d.Histogram[3].Count)
	assert.Greater(t, d.Skewness, 0.0)
}

func TestAnalyzeDistributionConstantColumn(t *testing.T) {
	d, err := AnalyzeDistribution([]float64{2, 2, 2}, 5)
	require.NoError(t, err)
	require.Len(t, d.Histogram, 1)
	assert.Equal(t, 3, d.Histogram[0].Count)
	assert.Equal(t, 0.0, d.Skewness)
}

func TestAnalyzeDistributionEmpty(t *testing.T) {
	_, err := AnalyzeDistribution(nil, 5)
	assert.Error(t, err)
}
