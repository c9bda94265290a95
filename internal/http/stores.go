package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

// Each controller depends on the narrow interface it needs.

// Importer runs spreadsheet imports and duplicate checks.
type Importer interface {
	ImportFile(ctx context.Context, filename string, data []byte, opts services.ImportOptions) (*services.Report, error)
	FindDuplicates(ctx context.Context, candidates []*entities.Appointment) ([]string, error)
}

// SessionLister lists import sessions, newest first.
type SessionLister interface {
	ListRecent(ctx context.Context, limit int) ([]entities.ImportSession, error)
	GetSession(ctx context.Context, id uint) (*entities.ImportSession, error)
}

// TaskQueue is the slice of the background queue the API uses.
type TaskQueue interface {
	EnqueueSweep(ctx context.Context, limit int) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
	IsRunning() bool
}
