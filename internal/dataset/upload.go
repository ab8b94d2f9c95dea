package dataset

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"dataviz/adapters/excel"
	"dataviz/domain/table"
	"dataviz/internal/errors"
)

// Format is the on-disk format of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Ext returns the file extension stored files of this format get.
func (f Format) Ext() string { return "." + string(f) }

// DetectFormat validates the upload file name and returns its format.
func DetectFormat(filename string) (Format, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.InvalidInput("no filename provided")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return "", errors.InvalidInput("legacy .xls workbooks are not supported, save the file as .xlsx or .csv")
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported file extension: %q", ext))
	}
}

// Decode parses upload bytes of the given format into a table. CSV and
// workbook rows share the same cleaning rules.
func Decode(format Format, data []byte, policy BlankPolicy) (*table.Table, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = ReadCSV(bytes.NewReader(data))
	case FormatXLSX:
		records, err = excel.ReadRows(bytes.NewReader(data))
		if err != nil {
			err = errors.ParseError("malformed workbook", err)
		}
	default:
		err = errors.InvalidInput(fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, err
	}

	return Clean(records, policy).Table()
}
