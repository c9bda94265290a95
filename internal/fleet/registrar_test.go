package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/extract"
)

type carKey struct{ name, unit string }

type mockCarStore struct {
	cars  map[carKey]*entities.Car
	calls int
	err   error
}

func newMockCarStore() *mockCarStore {
	return &mockCarStore{cars: make(map[carKey]*entities.Car)}
}

func (m *mockCarStore) FindOrCreateCar(_ context.Context, name, unit string) (*entities.Car, bool, error) {
	m.calls++
	if m.err != nil {
		return nil, false, m.err
	}
	key := carKey{name, unit}
	if car, ok := m.cars[key]; ok {
		return car, false, nil
	}
	car := &entities.Car{ID: uint(len(m.cars) + 1), Name: name, Unit: unit, Status: entities.CarStatusActive}
	m.cars[key] = car
	return car, true, nil
}

func TestParseCarDescription(t *testing.T) {
	tests := []struct {
		input, name, unit string
	}{
		{"CENTER 3 CARRO 1 - UND84", "CENTER 3 CARRO 1", "UND84"},
		{"CARRO 2", "CARRO 2", entities.DefaultCarUnit},
		{"  CARRO 2 - und12 ", "CARRO 2", "UND12"},
		{"CARRO - A - B", "CARRO - A", "B"},
		{"CENTER 3 - CARRO 1 - UND84", "CENTER 3 - CARRO 1", "UND84"},
	}

	for _, tt := range tests {
		name, unit := ParseCarDescription(tt.input)
		assert.Equal(t, tt.name, name, tt.input)
		assert.Equal(t, tt.unit, unit, tt.input)
	}
}

func TestParseCarDescription_MatchesAppointmentCar(t *testing.T) {
	rc, ok := extract.ParseRoomCode("AD-SF-FQ-AC-AV CENTER 3 - CARRO 1 - UND84")
	require.True(t, ok)

	name, _ := ParseCarDescription(rc.Payload)
	assert.Equal(t, rc.Car, name)
}

func TestRegistrar_CreatesOncePerBatch(t *testing.T) {
	store := newMockCarStore()
	registrar := NewRegistrar(store, nil)
	ctx := context.Background()

	created, err := registrar.Register(ctx, "CARRO 1 - UND84")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = registrar.Register(ctx, "CARRO 1 - UND84")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, registrar.Created())
	assert.Equal(t, entities.CarStatusActive, store.cars[carKey{"CARRO 1", "UND84"}].Status)
}

func TestRegistrar_DifferentStringsSameCar(t *testing.T) {
	store := newMockCarStore()
	registrar := NewRegistrar(store, nil)
	ctx := context.Background()

	_, err := registrar.Register(ctx, "CARRO 1 - UND84")
	require.NoError(t, err)
	created, err := registrar.Register(ctx, "CARRO 1 -  UND84")
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, 2, store.calls)
	assert.Len(t, store.cars, 1)
}

func TestRegistrar_ExistingCarIsNotCounted(t *testing.T) {
	store := newMockCarStore()
	store.cars[carKey{"CARRO 9", entities.DefaultCarUnit}] = &entities.Car{ID: 9, Name: "CARRO 9", Unit: entities.DefaultCarUnit}

	registrar := NewRegistrar(store, nil)
	created, err := registrar.Register(context.Background(), "CARRO 9")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, registrar.Created())
}

func TestRegistrar_StoreErrorIsRetriedNextTime(t *testing.T) {
	store := newMockCarStore()
	store.err = errors.New("connection refused")
	registrar := NewRegistrar(store, nil)
	ctx := context.Background()

	_, err := registrar.Register(ctx, "CARRO 1")
	require.Error(t, err)

	store.err = nil
	created, err := registrar.Register(ctx, "CARRO 1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, store.calls)
}

func TestRegistrar_BlankPayload(t *testing.T) {
	store := newMockCarStore()

	created, err := NewRegistrar(store, nil).Register(context.Background(), "   ")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, store.calls)
}
