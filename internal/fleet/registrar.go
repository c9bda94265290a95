// Package fleet registers the collection cars referenced by imported appointments.
package fleet

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/extract"
)

// CarStore defines the persistence needed to register cars. FindOrCreateCar
// must be idempotent for a (name, unit) pair.
type CarStore interface {
	FindOrCreateCar(ctx context.Context, name, unit string) (car *entities.Car, created bool, err error)
}

// Registrar finds or creates cars for one import run. The seen set only saves
// store round trips within the run; uniqueness is enforced by the store.
type Registrar struct {
	store  CarStore
	logger *zap.Logger
	seen   map[string]struct{}

	created int
}

// NewRegistrar creates a registrar for a single import. Do not share it across imports.
func NewRegistrar(store CarStore, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{
		store:  store,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Register ensures a car exists for the payload and reports whether it was created.
func (r *Registrar) Register(ctx context.Context, payload string) (bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return false, nil
	}
	if _, ok := r.seen[payload]; ok {
		return false, nil
	}

	name, unit := ParseCarDescription(payload)
	car, created, err := r.store.FindOrCreateCar(ctx, name, unit)
	if err != nil {
		return false, fmt.Errorf("find or create car %q: %w", payload, err)
	}
	r.seen[payload] = struct{}{}

	if created {
		r.created++
		r.logger.Info("car registered from import",
			zap.Uint("car_id", car.ID),
			zap.String("name", car.Name),
			zap.String("unit", car.Unit),
		)
	}
	return created, nil
}

// Created returns how many cars this registrar created.
func (r *Registrar) Created() int {
	return r.created
}

// ParseCarDescription splits "NAME - UNIT" with extract.SplitCarUnit, the same
// rule that fills Appointment.Car. Descriptions without a unit suffix belong to
// entities.DefaultCarUnit.
func ParseCarDescription(description string) (name, unit string) {
	name, unit = extract.SplitCarUnit(description)
	if unit == "" {
		return name, entities.DefaultCarUnit
	}
	return name, strings.ToUpper(unit)
}
