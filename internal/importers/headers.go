package importers

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column labels exported by the scheduling system. Lookups fold case, accents
// and repeated whitespace, so only one spelling per label is listed here.
const (
	HeaderBrand           = "Nome da marca"
	HeaderUnit            = "Nome da unidade"
	HeaderPatient         = "Nome do paciente"
	HeaderScheduledAt     = "Data/Hora do agendamento"
	HeaderStatus          = "Status"
	HeaderConfirmation    = "Status da confirmação"
	HeaderContacts        = "Contatos do paciente"
	HeaderNotes           = "Observações do agendamento"
	HeaderNotesGeneric    = "Observações"
	HeaderExams           = "Nome dos exames"
	HeaderConsultation    = "Nome da consulta"
	HeaderChannel         = "Canal de confirmação"
	HeaderChannelAlt      = "Canal da confirmação"
	HeaderConfirmedAt     = "Data/Hora da confirmação"
	HeaderConfirmedDate   = "Data da confirmação"
	HeaderConfirmedTime   = "Hora da confirmação"
	HeaderPostalCode      = "CEP"
	HeaderAddress         = "Endereço da coleta"
	HeaderCompleteAddress = "Endereço completo"
	HeaderDocuments       = "Documentos do paciente"
	HeaderRoom            = "Nome da sala"
)

// Insurance columns come in several spellings, listed in priority order.
var (
	HeadersInsuranceNumber = []string{"Número do convênio", "Nº do convênio", "Numero convenio"}
	HeadersInsuranceName   = []string{"Nome do convênio", "Convênio", "Convenio"}
	HeadersInsuranceCard   = []string{"Número da carteirinha", "Nº da carteirinha", "Carteirinha"}
)

// RequiredHeaders must all be present for a file to be imported.
var RequiredHeaders = []string{HeaderBrand, HeaderUnit, HeaderPatient}

// PlaceholderValue is written by the scheduling system into empty confirmation cells.
const PlaceholderValue = "-"

// FoldHeader returns the lookup key for a column label. It is safe for
// concurrent use: transform chains keep state, so each call builds its own.
func FoldHeader(label string) string {
	accentFolder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(accentFolder, label)
	if err != nil {
		folded = label
	}
	folded = strings.ToLower(strings.TrimPrefix(folded, "\ufeff"))
	folded = strings.ReplaceAll(folded, "º", "o")
	folded = strings.ReplaceAll(folded, "°", "o")
	return strings.Join(strings.Fields(folded), " ")
}

// MissingHeadersError lists the required headers absent from a file.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

// ValidateHeaders fails when any of RequiredHeaders is absent from the table.
func ValidateHeaders(table *Table) error {
	var missing []string
	for _, header := range RequiredHeaders {
		if !table.HasHeader(header) {
			missing = append(missing, header)
		}
	}
	if len(missing) > 0 {
		return &MissingHeadersError{Missing: missing}
	}
	return nil
}
