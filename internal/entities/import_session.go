package entities

import "time"

type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusPartial   ImportStatus = "partial"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportSession records one spreadsheet import run.
type ImportSession struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	FileName            string       `gorm:"size:512" json:"file_name"`
	Format              string       `gorm:"size:10" json:"format"`
	DryRun              bool         `json:"dry_run"`
	Status              ImportStatus `gorm:"size:20;default:'running'" json:"status"`
	TotalRows           int          `json:"total_rows"`
	ValidRows           int          `json:"valid_rows"`
	InvalidRows         int          `json:"invalid_rows"`
	FilteredRows        int          `json:"filtered_rows"`
	SavedRows           int          `json:"saved_rows"`
	DuplicateRows       int          `json:"duplicate_rows"`
	PastDateRows        int          `json:"past_date_rows"`
	CarsCreated         int          `json:"cars_created"`
	AddressesNormalized int          `json:"addresses_normalized"`
	DocumentsNormalized int          `json:"documents_normalized"`
	Errors              string       `gorm:"type:text" json:"errors,omitempty"` // JSON array of errors
	ArchivedFile        string       `gorm:"size:512" json:"archived_file,omitempty"`
	StartedAt           time.Time    `json:"started_at"`
	CompletedAt         *time.Time   `json:"completed_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
