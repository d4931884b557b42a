package record

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Attendance"

// ExportXLSX renders records into an attendance spreadsheet, one row
// per record in the given order. Images are left out; the sheet is for
// people, not payloads.
func ExportXLSX(records []Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"Logged At (UTC)", "Person", "Logged By", "Record ID"}
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		values := []any{
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			rec.PersonName,
			rec.LoggedBy,
			rec.ID,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
