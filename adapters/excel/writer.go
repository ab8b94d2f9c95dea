package excel

import (
	"fmt"
	"io"

	"dataviz/domain/table"

	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet exported tables are written to.
const SheetName = "Data"

// WriteTable writes t as a single-sheet workbook. Numbers stay numeric cells,
// missing values become empty cells.
func WriteTable(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, t.Width())
	for i, name := range t.Columns() {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		values := make([]interface{}, len(row))
		for j, c := range row {
			if c.IsMissing() {
				values[j] = ""
				continue
			}
			values[j] = c.Value()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
