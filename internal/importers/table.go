package importers

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/coletadomiciliar/backoffice/internal/extract"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// RawRow is one data row. Values are keyed by the folded header and hold a
// string, float64, time.Time or nil.
type RawRow struct {
	Line   int // line in the source file; the header is line 1
	Values map[string]any
}

// Value returns the cell under the given column label.
func (r RawRow) Value(label string) any {
	return r.Values[FoldHeader(label)]
}

// First returns the first non-blank cell among the labels, in priority order.
func (r RawRow) First(labels ...string) any {
	for _, label := range labels {
		v := r.Value(label)
		if _, ok := extract.String(v); ok {
			return v
		}
	}
	return nil
}

// Table is an in-memory spreadsheet: header labels in file order plus data rows.
type Table struct {
	Format  string
	Headers []string
	Rows    []RawRow

	index map[string]int
}

func newTable(format string, headers []string) *Table {
	t := &Table{Format: format, index: make(map[string]int, len(headers))}
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Headers = append(t.Headers, h)
		key := FoldHeader(h)
		if key == "" {
			continue
		}
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// HasHeader reports whether the table has a column with the given label.
func (t *Table) HasHeader(label string) bool {
	_, ok := t.index[FoldHeader(label)]
	return ok
}

// appendRow stores a row unless every cell is blank.
func (t *Table) appendRow(line int, cells []any) {
	values := make(map[string]any, len(t.index))
	blank := true
	for key, idx := range t.index {
		var v any
		if idx < len(cells) {
			v = cells[idx]
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			v = nil
		}
		if v != nil {
			blank = false
		}
		values[key] = v
	}
	if blank {
		return
	}
	t.Rows = append(t.Rows, RawRow{Line: line, Values: values})
}

// DetectFormat maps a file name to a supported format by extension.
func DetectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv, .xlsx or .xls)", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Load parses a delimited-text or spreadsheet file into a Table. Spreadsheet
// containers fall back to the other container reader when the one matching
// the extension fails, since exported files are often mislabelled.
func Load(filename string, data []byte) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var table *Table
	switch format {
	case FormatCSV:
		table, err = parseDelimited(data)
	case FormatXLSX:
		table, err = parseXLSX(data)
		if err != nil {
			if fallback, fbErr := parseXLS(data); fbErr == nil {
				table, err = fallback, nil
			}
		}
	case FormatXLS:
		table, err = parseXLS(data)
		if err != nil {
			if fallback, fbErr := parseXLSX(data); fbErr == nil {
				table, err = fallback, nil
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyFile)
	}
	return table, nil
}

// FilterByRoomCode drops rows whose room-name cell does not fully match the
// room-code pattern. Tables without the room column are returned unchanged.
// It returns the number of rows dropped.
func FilterByRoomCode(table *Table) int {
	if !table.HasHeader(HeaderRoom) {
		return 0
	}

	kept := table.Rows[:0]
	dropped := 0
	for _, row := range table.Rows {
		if extract.IsRoomCode(row.Value(HeaderRoom)) {
			kept = append(kept, row)
			continue
		}
		dropped++
	}
	table.Rows = kept
	return dropped
}
