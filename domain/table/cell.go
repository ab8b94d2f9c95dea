package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind distinguishes numeric cells from text cells.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Cell is a single table value, either a float64 or a text string.
// The zero Cell is the blank text cell, which stands for a missing value.
type Cell struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric cell.
func Number(v float64) Cell { return Cell{kind: KindNumber, num: v} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Blank returns the missing-value cell.
func Blank() Cell { return Cell{} }

// Parse turns raw text into a numeric cell when it parses as a float and a
// text cell otherwise.
func Parse(s string) Cell {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(v)
	}
	return Text(s)
}

func (c Cell) Kind() Kind     { return c.kind }
func (c Cell) IsNumber() bool { return c.kind == KindNumber }

// IsBlank reports whether c is the empty text cell.
func (c Cell) IsBlank() bool { return c.kind == KindText && c.text == "" }

// IsMissing reports whether c carries no usable value: blank text,
// whitespace-only text, or a NaN number.
func (c Cell) IsMissing() bool {
	if c.kind == KindNumber {
		return math.IsNaN(c.num)
	}
	return strings.TrimSpace(c.text) == ""
}

// Float returns the numeric reading of c. Text cells are parsed after
// trimming. Missing and non-numeric cells report false.
func (c Cell) Float() (float64, bool) {
	if c.kind == KindNumber {
		if math.IsNaN(c.num) {
			return 0, false
		}
		return c.num, true
	}
	s := strings.TrimSpace(c.text)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// String renders c the way it is shown to users.
func (c Cell) String() string {
	if c.kind == KindNumber {
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return c.text
}

// Value returns the cell as float64 or string.
func (c Cell) Value() interface{} {
	if c.kind == KindNumber {
		return c.num
	}
	return c.text
}

// MarshalJSON writes numbers as JSON numbers, non-finite numbers as null and
// text as JSON strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == KindNumber {
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.num)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = cellFromValue(v)
	return nil
}

func cellFromValue(v interface{}) Cell {
	switch t := v.(type) {
	case nil:
		return Blank()
	case float64:
		return Number(t)
	case string:
		return Text(t)
	case bool:
		return Text(strconv.FormatBool(t))
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return Blank()
		}
		return Text(string(raw))
	}
}
