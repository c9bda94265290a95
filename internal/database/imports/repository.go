// Package imports provides database operations for import session history.
package imports

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

// ErrSessionNotFound is returned when no import session has the requested ID.
var ErrSessionNotFound = errors.New("import session not found")

// Repository handles all import session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new import sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new import session.
func (r *Repository) CreateSession(ctx context.Context, session *entities.ImportSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// UpdateSession saves every field of an existing session.
func (r *Repository) UpdateSession(ctx context.Context, session *entities.ImportSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// GetSession retrieves an import session by ID.
func (r *Repository) GetSession(ctx context.Context, id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListRecent returns the most recent sessions, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	query := r.db.WithContext(ctx).Order("started_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}
