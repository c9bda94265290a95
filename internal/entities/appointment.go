package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "Confirmado"
	AppointmentStatusPending   AppointmentStatus = "Pendente"
)

// AppointmentSourceImport tags records created by the spreadsheet importer.
const AppointmentSourceImport = "import"

// Appointment is a scheduled home collection.
type Appointment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Brand         string            `gorm:"size:255;not null" json:"brand"`
	Unit          string            `gorm:"size:255;not null;index:idx_appointment_slot" json:"unit"`
	PatientName   string            `gorm:"size:255;not null;index:idx_appointment_slot" json:"patient_name"`
	ScheduledDate time.Time         `gorm:"index:idx_appointment_slot" json:"scheduled_date"`
	ScheduledTime string            `gorm:"size:5;index:idx_appointment_slot" json:"scheduled_time"`
	Status        AppointmentStatus `gorm:"size:20;default:'Pendente'" json:"status"`
	// SourceStatus keeps the explicit status column verbatim; it does not drive Status.
	SourceStatus string `gorm:"size:100" json:"source_status,omitempty"`

	PatientPhone string `gorm:"size:20" json:"patient_phone,omitempty"`
	Car          string `gorm:"size:255" json:"car,omitempty"`
	CarPayload   string `gorm:"size:255" json:"car_payload,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	ExamType     string `gorm:"type:text" json:"exam_type,omitempty"`

	RawAddress        string             `gorm:"type:text" json:"raw_address,omitempty"`
	PostalCode        string             `gorm:"size:9" json:"postal_code,omitempty"`
	NormalizedAddress *NormalizedAddress `gorm:"type:text" json:"normalized_address,omitempty"`

	RawDocuments       string              `gorm:"type:text" json:"raw_documents,omitempty"`
	NormalizedDocument *NormalizedDocument `gorm:"type:text" json:"normalized_document,omitempty"`
	// NormalizationAttempts counts background runs that left a stage unnormalized.
	NormalizationAttempts int `gorm:"not null;default:0" json:"normalization_attempts,omitempty"`
	PatientCPF         string              `gorm:"size:11;index" json:"patient_cpf,omitempty"`
	PatientRG          string              `gorm:"size:9" json:"patient_rg,omitempty"`

	InsuranceNumber string `gorm:"size:100" json:"insurance_number,omitempty"`
	InsuranceName   string `gorm:"size:255" json:"insurance_name,omitempty"`
	InsuranceCard   string `gorm:"size:100" json:"insurance_card,omitempty"`

	ConfirmationChannel string     `gorm:"size:100" json:"confirmation_channel,omitempty"`
	ConfirmationDate    *time.Time `json:"confirmation_date,omitempty"`
	ConfirmationTime    string     `gorm:"size:5" json:"confirmation_time,omitempty"`

	Source          string `gorm:"size:20;index" json:"source"`
	SourceRow       int    `json:"source_row,omitempty"`
	CandidateID     string `gorm:"size:36;index" json:"candidate_id,omitempty"`
	ImportSessionID *uint  `gorm:"index" json:"import_session_id,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// NeedsAddressNormalization reports whether a raw address is waiting for enrichment.
func (a *Appointment) NeedsAddressNormalization() bool {
	return a.RawAddress != "" && a.NormalizedAddress == nil
}

// NeedsDocumentNormalization reports whether raw documents are waiting for enrichment.
func (a *Appointment) NeedsDocumentNormalization() bool {
	return a.RawDocuments != "" && a.NormalizedDocument == nil
}

// Clone returns a copy that shares no pointers with the receiver.
func (a *Appointment) Clone() *Appointment {
	c := *a
	if a.NormalizedAddress != nil {
		addr := *a.NormalizedAddress
		c.NormalizedAddress = &addr
	}
	if a.NormalizedDocument != nil {
		doc := *a.NormalizedDocument
		c.NormalizedDocument = &doc
	}
	if a.ConfirmationDate != nil {
		d := *a.ConfirmationDate
		c.ConfirmationDate = &d
	}
	if a.ImportSessionID != nil {
		id := *a.ImportSessionID
		c.ImportSessionID = &id
	}
	return &c
}

// NormalizedAddress is a structured Brazilian address. Street, City and State are always set.
type NormalizedAddress struct {
	Street       string `json:"rua"`
	Number       string `json:"numero,omitempty"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro,omitempty"`
	City         string `json:"cidade"`
	State        string `json:"estado"`
	PostalCode   string `json:"cep,omitempty"`
}

func (n NormalizedAddress) Value() (driver.Value, error) {
	return marshalColumn(n)
}

func (n *NormalizedAddress) Scan(value any) error {
	return unmarshalColumn(value, n)
}

// NormalizedDocument holds the validated national IDs found in a free-text document field.
type NormalizedDocument struct {
	CPF          string `json:"cpf,omitempty"`
	RG           string `json:"rg,omitempty"`
	CPFFormatted string `json:"cpf_formatted,omitempty"`
	RGFormatted  string `json:"rg_formatted,omitempty"`
}

func (n NormalizedDocument) Value() (driver.Value, error) {
	return marshalColumn(n)
}

func (n *NormalizedDocument) Scan(value any) error {
	return unmarshalColumn(value, n)
}

func marshalColumn(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), dest)
	case []byte:
		return json.Unmarshal(v, dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
