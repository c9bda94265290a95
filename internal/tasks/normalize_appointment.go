package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/normalize"
)

// AppointmentNormalizer normalizes one persisted appointment.
type AppointmentNormalizer interface {
	NormalizeAppointment(ctx context.Context, id uint) (normalize.Stats, error)
}

// NormalizeAppointmentTask retries address and document normalization for a
// single stored appointment.
type NormalizeAppointmentTask struct {
	AppointmentID uint `json:"appointment_id"`
}

// Config returns the queue configuration for appointment normalization tasks.
func (t NormalizeAppointmentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "normalize_appointment",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     normalizeAppointmentTimeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NormalizeAppointmentProcessor creates a processor function for NormalizeAppointmentTask.
// A returned error makes backlite retry the task after the backoff.
func NormalizeAppointmentProcessor(normalizer AppointmentNormalizer, logger *zap.Logger) backlite.QueueProcessor[NormalizeAppointmentTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task NormalizeAppointmentTask) error {
		if normalizer == nil {
			return errors.New("normalizer not configured")
		}

		stats, err := normalizer.NormalizeAppointment(ctx, task.AppointmentID)
		if err != nil {
			return fmt.Errorf("normalize appointment %d: %w", task.AppointmentID, err)
		}

		logger.Info("appointment normalized",
			zap.Uint("appointment_id", task.AppointmentID),
			zap.Int("addresses", stats.AddressesNormalized),
			zap.Int("documents", stats.DocumentsNormalized),
		)
		return nil
	}
}

// NewNormalizeAppointmentQueue creates a backlite queue for appointment normalization tasks.
func NewNormalizeAppointmentQueue(normalizer AppointmentNormalizer, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(NormalizeAppointmentProcessor(normalizer, logger))
}
