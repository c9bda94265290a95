// Package cars provides database operations for the collection car fleet.
//
// This package implements the CarStore interface used by the fleet registrar.
//
//	var _ fleet.CarStore = (*Repository)(nil)
package cars

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/fleet"
)

var _ fleet.CarStore = (*Repository)(nil)

// Repository handles all car database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cars repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreateCar returns the car registered under (name, unit), creating an
// active one when missing. The boolean reports whether a car was created.
// A concurrent insert that trips the unique index is resolved by reading the
// winner's row.
func (r *Repository) FindOrCreateCar(ctx context.Context, name, unit string) (*entities.Car, bool, error) {
	db := r.db.WithContext(ctx)

	car, err := r.find(db, name, unit)
	if err == nil {
		return car, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	car = &entities.Car{Name: name, Unit: unit, Status: entities.CarStatusActive}
	if err := db.Create(car).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := r.find(db, name, unit)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return car, true, nil
}

// GetAll returns every registered car ordered by unit and name.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Car, error) {
	var cars []entities.Car
	err := r.db.WithContext(ctx).Order("unit ASC, name ASC").Find(&cars).Error
	return cars, err
}

func (r *Repository) find(db *gorm.DB, name, unit string) (*entities.Car, error) {
	var car entities.Car
	err := db.Where("name = ? AND unit = ?", name, unit).First(&car).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}
