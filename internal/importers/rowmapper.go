package importers

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/extract"
)

const confirmedValue = "confirmado"

// RowError is a row-level rejection. Line is the row's line in the source file.
type RowError struct {
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Line, e.Message)
}

// RowMapper turns one RawRow into a candidate Appointment.
type RowMapper struct {
	location *time.Location
	newID    func() string
}

// NewRowMapper creates a mapper that interprets spreadsheet dates in loc.
func NewRowMapper(loc *time.Location) *RowMapper {
	if loc == nil {
		loc = time.UTC
	}
	return &RowMapper{location: loc, newID: uuid.NewString}
}

// Map validates the mandatory fields and extracts the optional ones. Optional
// fields that do not parse are left empty; mandatory ones return a *RowError.
func (m *RowMapper) Map(row RawRow) (*entities.Appointment, error) {
	brand, ok := extract.String(row.Value(HeaderBrand))
	if !ok {
		return nil, missingField(row, HeaderBrand)
	}
	unit, ok := extract.String(row.Value(HeaderUnit))
	if !ok {
		return nil, missingField(row, HeaderUnit)
	}
	patient, ok := extract.String(row.Value(HeaderPatient))
	if !ok {
		return nil, missingField(row, HeaderPatient)
	}

	rawScheduled := row.Value(HeaderScheduledAt)
	scheduled, ok := extract.DateTime(rawScheduled, m.location)
	if !ok {
		if _, present := extract.String(rawScheduled); !present {
			return nil, missingField(row, HeaderScheduledAt)
		}
		return nil, &RowError{
			Line:    row.Line,
			Message: fmt.Sprintf("invalid date/time in %q: %v", HeaderScheduledAt, rawScheduled),
		}
	}

	a := &entities.Appointment{
		Brand:         brand,
		Unit:          unit,
		PatientName:   patient,
		ScheduledDate: extract.CalendarDay(scheduled.Date),
		ScheduledTime: scheduled.Clock,
		Status:        deriveStatus(row),
		Source:        entities.AppointmentSourceImport,
		SourceRow:     row.Line,
		CandidateID:   m.newID(),
	}

	a.SourceStatus, _ = extract.String(row.Value(HeaderStatus))
	a.PatientPhone, _ = extract.Phone(row.Value(HeaderContacts))
	a.Notes, _ = extract.String(row.First(HeaderNotes, HeaderNotesGeneric))
	a.ExamType, _ = extract.String(row.First(HeaderExams, HeaderConsultation))
	a.RawAddress, _ = extract.String(row.First(HeaderCompleteAddress, HeaderAddress))
	a.PostalCode = postalCode(row.Value(HeaderPostalCode))
	a.RawDocuments, _ = extract.String(row.Value(HeaderDocuments))
	a.InsuranceNumber, _ = extract.String(row.First(HeadersInsuranceNumber...))
	a.InsuranceName, _ = extract.String(row.First(HeadersInsuranceName...))
	a.InsuranceCard, _ = extract.String(row.First(HeadersInsuranceCard...))
	a.ConfirmationChannel, _ = extract.String(row.First(HeaderChannel, HeaderChannelAlt))
	m.mapConfirmation(row, a)

	if rc, ok := extract.ParseRoomCode(row.Value(HeaderRoom)); ok {
		a.Car = rc.Car
		a.CarPayload = rc.Payload
	}

	return a, nil
}

// deriveStatus only distinguishes "confirmado" in the confirmation column.
// Other explicit statuses, e.g. "Cancelado", collapse to pending.
func deriveStatus(row RawRow) entities.AppointmentStatus {
	confirmation, ok := extract.String(row.Value(HeaderConfirmation))
	if ok && FoldHeader(confirmation) == confirmedValue {
		return entities.AppointmentStatusConfirmed
	}
	return entities.AppointmentStatusPending
}

// mapConfirmation prefers the split date and time columns over the combined one.
func (m *RowMapper) mapConfirmation(row RawRow, a *entities.Appointment) {
	if date, ok := extract.Date(row.Value(HeaderConfirmedDate), m.location); ok {
		a.ConfirmationDate = &date
		a.ConfirmationTime, _ = extract.Clock(row.Value(HeaderConfirmedTime))
		return
	}

	combined := row.Value(HeaderConfirmedAt)
	if s, ok := extract.String(combined); !ok || s == PlaceholderValue {
		return
	}
	if moment, ok := extract.DateTime(combined, m.location); ok {
		a.ConfirmationDate = &moment.Date
		a.ConfirmationTime = moment.Clock
	}
}

// postalCode renders eight digits as NNNNN-NNN. Numeric cells lose their
// leading zero, so seven digits from a number are padded back.
func postalCode(v any) string {
	s, ok := extract.String(v)
	if !ok {
		return ""
	}
	digits := extract.Digits(s)
	if _, numeric := v.(float64); numeric && len(digits) == 7 {
		digits = "0" + digits
	}
	if len(digits) == 8 {
		return digits[:5] + "-" + digits[5:]
	}
	return strings.TrimSpace(s)
}

func missingField(row RawRow, header string) error {
	return &RowError{Line: row.Line, Message: fmt.Sprintf("missing required field %q", header)}
}
