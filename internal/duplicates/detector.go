// Package duplicates finds import candidates that collide with appointments
// already persisted for the same patient, slot and unit.
package duplicates

import (
	"context"
	"fmt"
	"time"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

// Store answers whether an appointment already occupies a slot.
type Store interface {
	ExistsAppointment(ctx context.Context, patientName string, date time.Time, clock, unit string) (bool, error)
}

// Detector flags candidates whose (patient, date, time, unit) already exists.
// Whether duplicates are skipped is up to the caller.
type Detector struct {
	store Store
}

// NewDetector creates a duplicate detector over store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// Detect returns the CandidateIDs of duplicated candidates, in input order.
func (d *Detector) Detect(ctx context.Context, candidates []*entities.Appointment) ([]string, error) {
	var duplicates []string
	for _, candidate := range candidates {
		exists, err := d.IsDuplicate(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			duplicates = append(duplicates, candidate.CandidateID)
		}
	}
	return duplicates, nil
}

// IsDuplicate checks one candidate. Candidates without a scheduled date or
// time cannot collide and are never duplicates.
func (d *Detector) IsDuplicate(ctx context.Context, candidate *entities.Appointment) (bool, error) {
	if candidate == nil || candidate.ScheduledDate.IsZero() || candidate.ScheduledTime == "" {
		return false, nil
	}

	exists, err := d.store.ExistsAppointment(ctx, candidate.PatientName, candidate.ScheduledDate, candidate.ScheduledTime, candidate.Unit)
	if err != nil {
		return false, fmt.Errorf("check duplicate for %q: %w", candidate.PatientName, err)
	}
	return exists, nil
}
