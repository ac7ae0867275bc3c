package gridview

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet group views live on.
const DefaultSheet = "Group View"

// GridFromSheet reads a worksheet into an in-memory grid.
func GridFromSheet(f *excelize.File, sheet string) (*SliceGrid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return NewSliceGrid(rows), nil
}

// WriteGridToSheet replaces a worksheet's contents with the grid. The
// sheet is recreated so stale rows from a previous render cannot leak
// through.
func WriteGridToSheet(f *excelize.File, sheet string, g *SliceGrid) error {
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("reset sheet %q: %w", sheet, err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	for r, row := range g.Data() {
		if len(row) == 0 {
			continue
		}
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		start, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	return nil
}

// SetSheetCell writes one cell by zero-based grid coordinates.
func SetSheetCell(f *excelize.File, sheet string, row, col int, value string) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, name, value)
}
