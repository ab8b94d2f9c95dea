package profiling

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	"dataviz/domain/table"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// TopValues is how many categories a categorical summary keeps.
const TopValues = 5

// ColumnStats summarises one column according to its classification.
type ColumnStats struct {
	Type  Classification
	Count int

	Numeric  *NumericSummary
	Datetime *DateRange
	Top      ValueCounts

	// Error is set instead of failing when no summary can be computed.
	Error string
}

// NumericSummary holds the descriptive statistics of a numeric column.
// Std is the sample standard deviation and is nil below two values.
type NumericSummary struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    *float64
}

type DateRange struct {
	Min time.Time
	Max time.Time
}

// ValueCount is one category and its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts keeps categories most frequent first.
type ValueCounts []ValueCount

// MarshalJSON writes an object whose key order is the ranking order.
func (vc ValueCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range vc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(v.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON flattens the summary into the shape the dashboard reads:
// min/max/mean/median/std for numbers, ISO-8601 min/max for dates and
// value_counts for categories.
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"type":  s.Type,
		"count": s.Count,
	}
	switch {
	case s.Error != "":
		out["error"] = s.Error
	case s.Numeric != nil:
		out["min"] = finite(s.Numeric.Min)
		out["max"] = finite(s.Numeric.Max)
		out["mean"] = finite(s.Numeric.Mean)
		out["median"] = finite(s.Numeric.Median)
		if s.Numeric.Std != nil {
			out["std"] = finite(*s.Numeric.Std)
		} else {
			out["std"] = nil
		}
	case s.Datetime != nil:
		out["min"] = FormatISO(s.Datetime.Min)
		out["max"] = FormatISO(s.Datetime.Max)
	default:
		top := s.Top
		if top == nil {
			top = ValueCounts{}
		}
		out["value_counts"] = top
	}
	return json.Marshal(out)
}

// Describe computes the statistics of cells under their classification.
func Describe(cells []table.Cell) ColumnStats {
	kind := Classify(cells)
	switch kind {
	case Numeric:
		return describeNumeric(cells)
	case Datetime:
		return describeDates(cells)
	default:
		return describeCategories(cells)
	}
}

// DescribeColumn looks up a column and describes it.
func DescribeColumn(t *table.Table, column string) (ColumnStats, error) {
	cells, err := t.Column(column)
	if err != nil {
		return ColumnStats{}, err
	}
	return Describe(cells), nil
}

func describeNumeric(cells []table.Cell) ColumnStats {
	values := make([]float64, 0, len(cells))
	for _, c := range cells {
		if v, ok := c.Float(); ok {
			values = append(values, v)
		}
	}

	result := ColumnStats{Type: Numeric, Count: len(values)}
	if len(values) == 0 {
		result.Error = "statistics unavailable: column has no numeric values"
		return result
	}

	min, err := stats.Min(values)
	if err != nil {
		result.Error = "statistics unavailable: " + err.Error()
		return result
	}
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	summary := &NumericSummary{Min: min, Max: max, Mean: mean, Median: median}
	if len(values) > 1 {
		std := stat.StdDev(values, nil)
		summary.Std = &std
	}
	result.Numeric = summary
	return result
}

func describeDates(cells []table.Cell) ColumnStats {
	result := ColumnStats{Type: Datetime}
	var r DateRange
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		t, ok := ParseDate(c.String())
		if !ok {
			continue
		}
		if result.Count == 0 || t.Before(r.Min) {
			r.Min = t
		}
		if result.Count == 0 || t.After(r.Max) {
			r.Max = t
		}
		result.Count++
	}
	if result.Count == 0 {
		result.Error = "statistics unavailable: column has no dates"
		return result
	}
	result.Datetime = &r
	return result
}

func describeCategories(cells []table.Cell) ColumnStats {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		key := c.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
		total++
	}

	ranked := make(ValueCounts, len(order))
	for i, key := range order {
		ranked[i] = ValueCount{Value: key, Count: counts[key]}
	}
	// stable sort keeps first-seen order among equal counts
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > TopValues {
		ranked = ranked[:TopValues]
	}

	return ColumnStats{Type: Categorical, Count: total, Top: ranked}
}

// FormatISO renders a date as ISO-8601, without an offset for UTC values.
func FormatISO(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format(time.RFC3339)
}

func finite(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
