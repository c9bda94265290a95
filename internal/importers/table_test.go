package importers

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleHeader = "Nome da marca;Nome da unidade;Nome do paciente;Data/Hora do agendamento;Nome da sala"

func csvFile(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestLoad_SemicolonCSV(t *testing.T) {
	data := csvFile(
		sampleHeader,
		"Lab Vida;Unidade Centro;Maria Silva;10/01/2025 08:30;AD-SF-FQ-AC-AV CARRO 1 - UND84",
		"Lab Vida;Unidade Centro;João Souza;10/01/2025 09:00;",
	)

	table, err := Load("agenda.csv", data)

	require.NoError(t, err)
	assert.Equal(t, FormatCSV, table.Format)
	assert.Len(t, table.Headers, 5)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 3, table.Rows[1].Line)
	assert.Equal(t, "Maria Silva", table.Rows[0].Value(HeaderPatient))
	assert.Nil(t, table.Rows[1].Value(HeaderRoom))
}

func TestLoad_CommaCSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvFile(
		"Nome da marca,Nome da unidade,Nome do paciente",
		"Lab Vida,Centro,Maria",
	)...)

	table, err := Load("agenda.CSV", data)

	require.NoError(t, err)
	assert.True(t, table.HasHeader(HeaderBrand))
	assert.Equal(t, "Lab Vida", table.Rows[0].Value(HeaderBrand))
}

func TestLoad_Windows1252CSV(t *testing.T) {
	utf8Content := string(csvFile(
		"Nome da marca;Nome da unidade;Nome do paciente;Observações",
		"Lab Vida;São Paulo;José;Jejum obrigatório",
	))
	encoded, err := charmap.Windows1252.NewEncoder().String(utf8Content)
	require.NoError(t, err)

	table, err := Load("agenda.csv", []byte(encoded))

	require.NoError(t, err)
	row := table.Rows[0]
	assert.Equal(t, "São Paulo", row.Value(HeaderUnit))
	assert.Equal(t, "José", row.Value(HeaderPatient))
	assert.Equal(t, "Jejum obrigatório", row.Value(HeaderNotesGeneric))
}

func TestLoad_SkipsBlankRowsKeepingLineNumbers(t *testing.T) {
	data := csvFile(
		sampleHeader,
		";;;;",
		"Lab Vida;Centro;Maria;10/01/2025 08:30;",
	)

	table, err := Load("agenda.csv", data)

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 3, table.Rows[0].Line)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load("agenda.csv", []byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Load("agenda.csv", csvFile(sampleHeader))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("agenda.pdf", []byte("data"))

	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), ".pdf")
}

func TestLoad_CorruptSpreadsheet(t *testing.T) {
	_, err := Load("agenda.xlsx", []byte("definitely not a zip container"))

	assert.Error(t, err)
}

func TestValidateHeaders(t *testing.T) {
	table := newTable(FormatCSV, []string{"NOME DA MARCA", "nome da unidade ", "Nome do Paciente"})
	assert.NoError(t, ValidateHeaders(table))

	table = newTable(FormatCSV, []string{"Nome da marca", "Telefone"})
	err := ValidateHeaders(table)

	var missing *MissingHeadersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{HeaderUnit, HeaderPatient}, missing.Missing)
	assert.Contains(t, err.Error(), "Nome da unidade, Nome do paciente")
}

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "status da confirmacao", FoldHeader("  Status da   CONFIRMAÇÃO "))
	assert.Equal(t, "no do convenio", FoldHeader("Nº do convênio"))
	assert.Equal(t, FoldHeader("Endereço completo"), FoldHeader("ENDERECO COMPLETO"))
}

func TestFoldHeader_Concurrent(t *testing.T) {
	labels := []string{HeaderConfirmation, HeaderCompleteAddress, "Nº da carteirinha", HeaderNotes}
	want := make([]string, len(labels))
	for i, label := range labels {
		want[i] = FoldHeader(label)
	}

	var wg sync.WaitGroup
	mismatches := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 2000; n++ {
				i := n % len(labels)
				if got := FoldHeader(labels[i]); got != want[i] {
					select {
					case mismatches <- got:
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(mismatches)

	assert.Empty(t, mismatches)
}

func TestFilterByRoomCode(t *testing.T) {
	data := csvFile(
		sampleHeader,
		"Lab;Centro;Ana;10/01/2025 08:30;AD-SF-FQ-AC-AV CARRO 1 - UND84",
		"Lab;Centro;Bia;10/01/2025 08:30;SALA 3",
		"Lab;Centro;Cris;10/01/2025 08:30;",
		"Lab;Centro;Duda;10/01/2025 08:30;AB-CD-EF-GH-IJ CARRO 2",
	)
	table, err := Load("agenda.csv", data)
	require.NoError(t, err)

	dropped := FilterByRoomCode(table)

	assert.Equal(t, 2, dropped)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ana", table.Rows[0].Value(HeaderPatient))
	assert.Equal(t, "Duda", table.Rows[1].Value(HeaderPatient))
}

func TestFilterByRoomCode_NoRoomColumn(t *testing.T) {
	table, err := Load("agenda.csv", csvFile(
		"Nome da marca;Nome da unidade;Nome do paciente",
		"Lab;Centro;Ana",
	))
	require.NoError(t, err)

	assert.Equal(t, 0, FilterByRoomCode(table))
	assert.Len(t, table.Rows, 1)
}
