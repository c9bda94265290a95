package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/normalize"
)

// ErrNormalizationIncomplete marks an appointment that still has a failed stage.
var ErrNormalizationIncomplete = errors.New("normalization incomplete")

// MaxNormalizationAttempts bounds the failed background runs per appointment.
// Exhausted appointments are skipped by NormalizeAppointment and by sweeps.
const MaxNormalizationAttempts = 3

// NormalizationService retries normalization for appointments that are
// already persisted.
type NormalizationService struct {
	store      NormalizationStore
	normalizer Normalizer
	logger     *zap.Logger
}

// NewNormalizationService creates a new NormalizationService.
func NewNormalizationService(store NormalizationStore, normalizer Normalizer, logger *zap.Logger) *NormalizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NormalizationService{store: store, normalizer: normalizer, logger: logger}
}

// NormalizeAppointment normalizes one stored appointment and saves the
// enriched fields. It returns ErrNormalizationIncomplete when a stage still
// failed, so a task runner can retry it, until the appointment has used
// MaxNormalizationAttempts; after that it is skipped without error.
func (s *NormalizationService) NormalizeAppointment(ctx context.Context, id uint) (normalize.Stats, error) {
	appointment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return normalize.Stats{}, fmt.Errorf("load appointment %d: %w", id, err)
	}
	if appointment.NormalizationAttempts >= MaxNormalizationAttempts {
		s.logger.Debug("normalization attempts exhausted",
			zap.Uint("appointment_id", id),
			zap.Int("attempts", appointment.NormalizationAttempts),
		)
		return normalize.Stats{}, nil
	}

	normalized, stats := s.normalizer.NormalizeRecord(ctx, appointment)
	if stats.AddressesNormalized+stats.DocumentsNormalized > 0 {
		if err := s.store.UpdateNormalization(ctx, normalized); err != nil {
			return stats, fmt.Errorf("save normalization for appointment %d: %w", id, err)
		}
	}

	if stats.AddressesFailed+stats.DocumentsFailed > 0 {
		if err := s.store.RecordNormalizationFailure(ctx, id); err != nil {
			return stats, fmt.Errorf("record normalization failure for appointment %d: %w", id, err)
		}
		if appointment.NormalizationAttempts+1 >= MaxNormalizationAttempts {
			s.logger.Warn("giving up on appointment normalization",
				zap.Uint("appointment_id", id),
				zap.Int("attempts", appointment.NormalizationAttempts+1),
			)
			return stats, nil
		}
		return stats, fmt.Errorf("appointment %d: %w", id, ErrNormalizationIncomplete)
	}
	return stats, nil
}

// PendingIDs lists up to limit appointments still missing normalization.
func (s *NormalizationService) PendingIDs(ctx context.Context, limit int) ([]uint, error) {
	appointments, err := s.store.ListMissingNormalization(ctx, MaxNormalizationAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("list appointments missing normalization: %w", err)
	}

	ids := make([]uint, 0, len(appointments))
	for _, appointment := range appointments {
		ids = append(ids, appointment.ID)
	}
	s.logger.Debug("pending normalizations", zap.Int("count", len(ids)))
	return ids, nil
}
