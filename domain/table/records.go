package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"dataviz/internal/errors"

	"github.com/tidwall/gjson"
)

// Field is one key/value pair of a Record.
type Field struct {
	Name  string
	Value Cell
}

// Record is a row object whose keys keep their original order.
type Record []Field

// Get returns the value stored under name.
func (r Record) Get(name string) (Cell, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Cell{}, false
}

// Set replaces the value under name or appends a new field.
func (r Record) Set(name string, value Cell) Record {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Name: name, Value: value})
}

// MarshalJSON writes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("record must be a JSON object")
	}
	*r = recordFromResult(res)
	return nil
}

// ParseRecords decodes a JSON array of objects, keeping each object's key
// order so the resulting column order follows the input.
func ParseRecords(raw []byte) ([]Record, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.InvalidInput("records are not valid JSON")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return nil, errors.InvalidInput("records must be a JSON array")
	}

	var (
		records []Record
		err     error
	)
	res.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = errors.InvalidInput(fmt.Sprintf("record %d is not an object", len(records)+1))
			return false
		}
		records = append(records, recordFromResult(item))
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func recordFromResult(obj gjson.Result) Record {
	rec := Record{}
	obj.ForEach(func(key, value gjson.Result) bool {
		rec = rec.Set(key.String(), cellFromResult(value))
		return true
	})
	return rec
}

func cellFromResult(v gjson.Result) Cell {
	switch v.Type {
	case gjson.Null:
		return Blank()
	case gjson.Number:
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return Number(f)
		}
		return Number(v.Float())
	case gjson.String:
		return Text(v.String())
	case gjson.True, gjson.False:
		return Text(v.Raw)
	default:
		return Text(v.Raw)
	}
}

// FromRecords builds a table from row objects. The column set is the union
// of all keys in first-seen order; keys missing from a record become blank.
func FromRecords(records []Record) (*Table, error) {
	var header []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, f := range rec {
			if !seen[f.Name] {
				seen[f.Name] = true
				header = append(header, f.Name)
			}
		}
	}

	rows := make([][]Cell, len(records))
	for i, rec := range records {
		row := make([]Cell, len(header))
		for j, name := range header {
			if v, ok := rec.Get(name); ok {
				row[j] = v
			}
		}
		rows[i] = row
	}
	return New(header, rows)
}

// Records converts the table back into row objects. Missing values come back
// as empty strings.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i, row := range t.rows {
		rec := make(Record, len(t.columns))
		for j, name := range t.columns {
			v := row[j]
			if v.IsNumber() && v.IsMissing() {
				v = Blank()
			}
			rec[j] = Field{Name: name, Value: v}
		}
		out[i] = rec
	}
	return out
}

// MarshalRecords encodes t as a JSON array of row objects.
func MarshalRecords(t *Table) ([]byte, error) {
	raw, err := json.Marshal(t.Records())
	if err != nil {
		return nil, errors.SerializationError(err)
	}
	return raw, nil
}
