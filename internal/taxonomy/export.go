package taxonomy

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the sheet name used for workbook exports
const ExportSheet = "Taxonomy"

// ContentType returns the response media type for format
func ContentType(format Format) string {
	if format == FormatXLSX {
		return xlsxContentType
	}
	return "text/csv; charset=utf-8"
}

// Write renders rows in format
func Write(format Format, rows [][]string) ([]byte, error) {
	if format == FormatXLSX {
		return WriteWorkbook(rows)
	}
	return WriteDelimited(rows)
}

// WriteDelimited renders rows as semicolon separated UTF-8 text with a BOM so
// that spreadsheet applications pick the right encoding.
func WriteDelimited(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write delimited: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWorkbook renders rows on a single sheet with a bold header row
func WriteWorkbook(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		})
		if err == nil {
			lastCell, _ := excelize.CoordinatesToCellName(max(len(rows[0]), 1), 1)
			_ = f.SetCellStyle(ExportSheet, "A1", lastCell, headerStyle)
		}
		_ = f.SetColWidth(ExportSheet, "A", "B", 40)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
