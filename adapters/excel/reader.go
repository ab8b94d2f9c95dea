// Package excel reads and writes .xlsx workbooks for dataviz tables.
package excel

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadRows returns the rows of the first sheet in a workbook, padded so every
// row is as wide as the widest one. Excel drops trailing empty cells, which
// would otherwise look like ragged rows.
func ReadRows(r io.Reader) ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}

	slog.Debug("workbook read",
		"component", "excel",
		"sheet", sheets[0],
		"rows", len(rows),
		"elapsed_ms", float64(time.Since(start).Microseconds())/1000)
	return rows, nil
}
