package importers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of an OOXML workbook. Numeric cells become
// float64 so dates keep their serial value; text cells stay strings.
func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	var table *Table
	for r, row := range rows {
		if isBlankRecord(row) {
			continue
		}
		if table == nil {
			table = newTable(FormatXLSX, row)
			continue
		}

		cells := make([]any, len(row))
		for c, raw := range row {
			cells[c] = xlsxCellValue(f, sheet, c+1, r+1, raw)
		}
		table.appendRow(r+1, cells)
	}

	if table == nil {
		return nil, ErrEmptyFile
	}
	return table, nil
}

func xlsxCellValue(f *excelize.File, sheet string, col, row int, raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return raw
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return raw
}

// parseXLS reads the first sheet of a legacy BIFF workbook. The reader renders
// every cell as text, with date cells in RFC 3339.
func parseXLS(data []byte) (result *Table, err error) {
	// the legacy reader panics on some malformed containers
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("failed to open xls: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	var table *Table
	for r := 0; r <= int(sheet.MaxRow); r++ {
		row := sheet.Row(r)
		if row == nil {
			continue
		}
		record := make([]string, row.LastCol())
		for c := range record {
			record[c] = row.Col(c)
		}
		if isBlankRecord(record) {
			continue
		}
		if table == nil {
			table = newTable(FormatXLS, record)
			continue
		}

		cells := make([]any, len(record))
		for c, raw := range record {
			cells[c] = xlsCellValue(raw)
		}
		table.appendRow(r+1, cells)
	}

	if table == nil {
		return nil, ErrEmptyFile
	}
	return table, nil
}

func xlsCellValue(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return raw
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
