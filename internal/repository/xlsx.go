package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"airwatch/internal/models"
)

// readXLSXRecords flattens a worksheet into string records, header first.
// Date cells stored as Excel serials in the timestamp column are rendered in the day-first layout.
func readXLSXRecords(path, sheetName string) ([][]string, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	var sheet *xlsx.Sheet
	if sheetName != "" {
		sheet = file.Sheet[sheetName]
		if sheet == nil {
			return nil, &models.ValidationError{
				Field:   "sheet",
				Value:   sheetName,
				Message: fmt.Sprintf("worksheet %q not found in workbook", sheetName),
			}
		}
	} else if len(file.Sheets) > 0 {
		sheet = file.Sheets[0]
	}
	if sheet == nil {
		return nil, &models.EmptyDataError{Stage: "load", Message: "workbook has no worksheets"}
	}

	var records [][]string
	width := 0
	tsCol := -1
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		rec := make([]string, len(row.Cells))
		blank := true
		for i, cell := range row.Cells {
			if cell == nil {
				continue
			}
			rec[i] = cell.Value
			if strings.TrimSpace(rec[i]) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if records == nil {
			width = len(rec)
			for i, name := range rec {
				if strings.TrimSpace(name) == models.ColumnTimestamp {
					tsCol = i
				}
			}
		} else if tsCol >= 0 && tsCol < len(rec) {
			rec[tsCol] = excelTimestamp(rec[tsCol], file.Date1904)
		}

		for len(rec) < width {
			rec = append(rec, "")
		}
		records = append(records, rec[:width])
	}
	return records, nil
}

// excelTimestamp converts a serial date into the timestamp layout and passes text through
func excelTimestamp(raw string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return raw
	}
	return xlsx.TimeFromExcelTime(serial, date1904).Round(time.Minute).Format(models.TimestampLayout)
}
