// Package dataset turns uploaded bytes into a typed table: CSV and workbook
// parsing, blank-cell policy, header normalisation and upload validation.
package dataset

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"dataviz/domain/table"
	"dataviz/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BlankPolicy decides what a cell that is empty after trimming becomes.
type BlankPolicy func() table.Cell

// FillBlankWithZero replaces blank cells with the number 0. It is the
// default policy; note that it makes "missing" indistinguishable from zero.
func FillBlankWithZero() table.Cell { return table.Number(0) }

// TreatBlankAsMissing keeps blank cells blank so statistics skip them.
func TreatBlankAsMissing() table.Cell { return table.Blank() }

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (BlankPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zero":
		return FillBlankWithZero, nil
	case "missing", "blank":
		return TreatBlankAsMissing, nil
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown blank policy %q", name))
	}
}

// Parsed is the cleaned output of the preprocessor.
type Parsed struct {
	Header []string
	Rows   [][]table.Cell
}

// Table builds the table for p. Rows whose width disagrees with the header
// fail with SHAPE_ERROR.
func (p *Parsed) Table() (*table.Table, error) {
	if len(p.Header) == 0 && len(p.Rows) == 0 {
		return table.Empty(), nil
	}
	return table.New(p.Header, p.Rows)
}

// Preprocess parses raw CSV text. Zero records yield an empty header and no
// rows. The first record is the header; data rows that are entirely blank are
// dropped; every remaining cell is trimmed, run through policy when blank and
// parsed as a float when possible.
func Preprocess(text []byte, policy BlankPolicy) (*Parsed, error) {
	records, err := ReadCSV(bytes.NewReader(text))
	if err != nil {
		return nil, err
	}
	return Clean(records, policy), nil
}

// ReadCSV reads every record with standard comma and quote rules. Records may
// have differing widths; that is reported later as a shape error.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ParseError("failed to read CSV input", err)
	}
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if stderrors.As(err, &perr) {
			return nil, errors.ParseError(
				fmt.Sprintf("malformed CSV at line %d, column %d", perr.Line, perr.Column), perr.Err)
		}
		return nil, errors.ParseError("malformed CSV", err)
	}
	return records, nil
}

// Clean applies the row and cell rules to already-split records. Workbook
// sheets go through the same path as CSV text.
func Clean(records [][]string, policy BlankPolicy) *Parsed {
	if policy == nil {
		policy = FillBlankWithZero
	}
	if len(records) == 0 {
		return &Parsed{Header: []string{}, Rows: [][]table.Cell{}}
	}

	rows := make([][]table.Cell, 0, len(records)-1)
	for _, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		row := make([]table.Cell, len(record))
		for i, raw := range record {
			v := strings.TrimSpace(raw)
			if v == "" {
				row[i] = policy()
				continue
			}
			row[i] = table.Parse(v)
		}
		rows = append(rows, row)
	}

	return &Parsed{Header: NormalizeHeader(records[0]), Rows: rows}
}

// NormalizeHeader trims names, names empty columns "Unnamed: <i>" and
// suffixes repeated names with ".1", ".2" so every column is unique.
func NormalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	for i, name := range raw {
		base := strings.TrimSpace(name)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}
		name = base
		for used[name] {
			next[base]++
			name = fmt.Sprintf("%s.%d", base, next[base])
		}
		used[name] = true
		header[i] = name
	}
	return header
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
			continue
		}
		buf.WriteRune(r)
		data = data[size:]
	}
	return buf.Bytes()
}
