// Package appointments provides database operations for scheduled home collections.
//
// # Interface Implementation
//
//	var _ duplicates.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := appointments.NewRepository(db)
//	exists, err := repo.ExistsAppointment(ctx, "Maria Silva", date, "08:00", "Centro")
package appointments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coletadomiciliar/backoffice/internal/duplicates"
	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/extract"
)

var _ duplicates.Store = (*Repository)(nil)

// Repository handles all appointment database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new appointments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a new appointment. Imported records already carry the UTC
// midnight of their calendar day; other callers get the same form written
// back to appointment.ScheduledDate before the insert.
func (r *Repository) Save(ctx context.Context, appointment *entities.Appointment) error {
	appointment.ScheduledDate = extract.CalendarDay(appointment.ScheduledDate)
	return r.db.WithContext(ctx).Create(appointment).Error
}

// ExistsAppointment reports whether an appointment already occupies the
// (patient, date, time, unit) slot.
func (r *Repository) ExistsAppointment(ctx context.Context, patientName string, date time.Time, clock, unit string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Appointment{}).
		Where("patient_name = ? AND scheduled_date = ? AND scheduled_time = ? AND unit = ?",
			patientName, extract.CalendarDay(date), clock, unit).
		Count(&count).Error
	return count > 0, err
}

// GetByID retrieves an appointment by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Appointment, error) {
	var appointment entities.Appointment
	err := r.db.WithContext(ctx).First(&appointment, id).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// UpdateNormalization persists the normalized address and document fields.
func (r *Repository) UpdateNormalization(ctx context.Context, appointment *entities.Appointment) error {
	return r.db.WithContext(ctx).Model(&entities.Appointment{ID: appointment.ID}).
		Select("normalized_address", "normalized_document", "postal_code", "patient_cpf", "patient_rg").
		Updates(appointment).Error
}

// RecordNormalizationFailure increments the failed background attempts of an
// appointment.
func (r *Repository) RecordNormalizationFailure(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entities.Appointment{}).
		Where("id = ?", id).
		UpdateColumn("normalization_attempts", gorm.Expr("normalization_attempts + ?", 1)).Error
}

// ListMissingNormalization returns appointments whose raw address or documents
// were never normalized, oldest first. Appointments that already failed
// maxAttempts background runs are left out (maxAttempts <= 0 disables the cap).
func (r *Repository) ListMissingNormalization(ctx context.Context, maxAttempts, limit int) ([]entities.Appointment, error) {
	var appointments []entities.Appointment
	query := r.db.WithContext(ctx).
		Where("(raw_address <> '' AND normalized_address IS NULL) OR (raw_documents <> '' AND normalized_document IS NULL)").
		Order("id ASC")
	if maxAttempts > 0 {
		query = query.Where("normalization_attempts < ?", maxAttempts)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&appointments).Error
	return appointments, err
}

// Count returns the number of stored appointments.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Appointment{}).Count(&count).Error
	return count, err
}
