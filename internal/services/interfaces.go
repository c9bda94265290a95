package services

import (
	"context"

	"github.com/coletadomiciliar/backoffice/internal/duplicates"
	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/normalize"
)

// AppointmentStore persists imported appointments.
// Use this interface when you need to save and look up slots.
type AppointmentStore interface {
	duplicates.Store
	Save(ctx context.Context, appointment *entities.Appointment) error
}

// NormalizationStore reads and updates appointments for deferred normalization.
type NormalizationStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Appointment, error)
	UpdateNormalization(ctx context.Context, appointment *entities.Appointment) error
	RecordNormalizationFailure(ctx context.Context, id uint) error
	ListMissingNormalization(ctx context.Context, maxAttempts, limit int) ([]entities.Appointment, error)
}

// SessionStore records import runs.
type SessionStore interface {
	CreateSession(ctx context.Context, session *entities.ImportSession) error
	UpdateSession(ctx context.Context, session *entities.ImportSession) error
}

// Normalizer enriches a batch of appointments. It never fails.
type Normalizer interface {
	Normalize(ctx context.Context, records []*entities.Appointment) ([]*entities.Appointment, normalize.Stats)
	NormalizeRecord(ctx context.Context, record *entities.Appointment) (*entities.Appointment, normalize.Stats)
}

// NormalizationEnqueuer schedules background normalization for saved appointments.
type NormalizationEnqueuer interface {
	EnqueueNormalization(ctx context.Context, appointmentIDs ...uint) error
}

// UploadArchiver keeps a copy of every imported file.
type UploadArchiver interface {
	SaveUpload(filename string, data []byte) (string, error)
}
