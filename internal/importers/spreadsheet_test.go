package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows to the first sheet starting at A1 and returns the xlsx bytes.
func buildWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoad_XLSX(t *testing.T) {
	data := buildWorkbook(t,
		[]any{HeaderBrand, HeaderUnit, HeaderPatient, HeaderScheduledAt, HeaderContacts},
		[]any{"Lab Vida", "Centro", "Maria Silva", 45667.5, 11987654321},
		[]any{nil, nil, nil, nil, nil},
		[]any{"Lab Vida", "Centro", "João", "10/01/2025 09:00", "(11) 3333-4444"},
	)

	table, err := Load("agenda.xlsx", data)

	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, table.Format)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Maria Silva", first.Value(HeaderPatient))
	assert.Equal(t, 45667.5, first.Value(HeaderScheduledAt))
	assert.Equal(t, float64(11987654321), first.Value(HeaderContacts))

	second := table.Rows[1]
	assert.Equal(t, 4, second.Line)
	assert.Equal(t, "10/01/2025 09:00", second.Value(HeaderScheduledAt))
}

func TestLoad_XLSXHeaderAfterBlankRows(t *testing.T) {
	data := buildWorkbook(t,
		[]any{nil},
		[]any{HeaderBrand, HeaderUnit, HeaderPatient},
		[]any{"Lab", "Centro", "Ana"},
	)

	table, err := Load("agenda.xlsx", data)

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 3, table.Rows[0].Line)
}

func TestLoad_XLSWithOOXMLContentFallsBack(t *testing.T) {
	data := buildWorkbook(t,
		[]any{HeaderBrand, HeaderUnit, HeaderPatient},
		[]any{"Lab", "Centro", "Ana"},
	)

	table, err := Load("agenda.xls", data)

	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, table.Format)
	assert.Equal(t, "Ana", table.Rows[0].Value(HeaderPatient))
}

func TestLoad_XLSXHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, []any{HeaderBrand, HeaderUnit, HeaderPatient})

	_, err := Load("agenda.xlsx", data)

	assert.ErrorIs(t, err, ErrEmptyFile)
}
