package profiling

import (
	"strings"
	"time"

	"dataviz/domain/table"
)

// Classification is the derived type of a column. It is computed on demand
// and never stored with the table.
type Classification string

const (
	Numeric     Classification = "numeric"
	Datetime    Classification = "datetime"
	Categorical Classification = "categorical"
)

// dateLayouts are tried in order; month-first wins over day-first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate is the best-effort date parser used for classification.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Classify derives a column's type. A column is numeric when every
// non-missing value reads as a number (an all-missing column counts as
// numeric), otherwise datetime when every non-missing value parses as a date,
// otherwise categorical.
func Classify(cells []table.Cell) Classification {
	numeric, datetime := true, true
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		if numeric {
			if _, ok := c.Float(); !ok {
				numeric = false
			}
		}
		if datetime {
			if c.IsNumber() {
				datetime = false
			} else if _, ok := ParseDate(c.String()); !ok {
				datetime = false
			}
		}
		if !numeric && !datetime {
			return Categorical
		}
	}
	if numeric {
		return Numeric
	}
	return Datetime
}

// ClassifyTable returns the classification of every column.
func ClassifyTable(t *table.Table) map[string]Classification {
	out := make(map[string]Classification, t.Width())
	for _, name := range t.Columns() {
		cells, _ := t.Column(name)
		out[name] = Classify(cells)
	}
	return out
}
