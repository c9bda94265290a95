package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

const (
	// DefaultSweepLimit caps how many appointments a single sweep enqueues.
	DefaultSweepLimit = 200
	MaxSweepLimit     = 2000
)

// PendingLister lists stored appointments that still need normalization.
type PendingLister interface {
	PendingIDs(ctx context.Context, limit int) ([]uint, error)
}

// Enqueuer schedules per-appointment normalization tasks.
type Enqueuer interface {
	EnqueueNormalization(ctx context.Context, appointmentIDs ...uint) error
}

// NormalizePendingTask finds appointments missing normalization and fans out
// one NormalizeAppointmentTask per appointment.
type NormalizePendingTask struct {
	// Limit caps the number of appointments enqueued (0 = DefaultSweepLimit)
	Limit int `json:"limit,omitempty"`
}

// Config returns the queue configuration for normalization sweeps.
func (t NormalizePendingTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "normalize_pending",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     normalizePendingTimeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NormalizePendingProcessor creates a processor function for NormalizePendingTask.
func NormalizePendingProcessor(lister PendingLister, enqueuer Enqueuer, logger *zap.Logger) backlite.QueueProcessor[NormalizePendingTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task NormalizePendingTask) error {
		if lister == nil || enqueuer == nil {
			return errors.New("normalization sweep not configured")
		}

		limit := task.Limit
		if limit <= 0 {
			limit = DefaultSweepLimit
		}
		if limit > MaxSweepLimit {
			limit = MaxSweepLimit
		}

		ids, err := lister.PendingIDs(ctx, limit)
		if err != nil {
			return fmt.Errorf("normalization sweep: %w", err)
		}
		if len(ids) == 0 {
			logger.Debug("normalization sweep: nothing pending")
			return nil
		}

		if err := enqueuer.EnqueueNormalization(ctx, ids...); err != nil {
			return fmt.Errorf("normalization sweep: %w", err)
		}

		logger.Info("normalization sweep enqueued appointments", zap.Int("count", len(ids)))
		return nil
	}
}

// NewNormalizePendingQueue creates a backlite queue for normalization sweeps.
func NewNormalizePendingQueue(lister PendingLister, enqueuer Enqueuer, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(NormalizePendingProcessor(lister, enqueuer, logger))
}
