package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/normalize"
)

func seedAppointment(t *testing.T, store *memoryAppointments, rawAddress string) uint {
	t.Helper()
	a := &entities.Appointment{Brand: "Lab Vida", Unit: "Centro", PatientName: "Maria Silva", RawAddress: rawAddress}
	require.NoError(t, store.Save(context.Background(), a))
	return a.ID
}

func TestNormalizationService_NormalizeAppointment(t *testing.T) {
	store := &memoryAppointments{}
	id := seedAppointment(t, store, "Av. Paulista, 1000")
	service := NewNormalizationService(store, normalize.NewOrchestrator(fixedAddresses{}, nil, nil), nil)

	stats, err := service.NormalizeAppointment(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.AddressesNormalized)
	saved, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, saved.NormalizedAddress)
	assert.Equal(t, "SP", saved.NormalizedAddress.State)
}

func TestNormalizationService_IncompleteIsRetryable(t *testing.T) {
	store := &memoryAppointments{}
	id := seedAppointment(t, store, "Rua A")
	service := NewNormalizationService(store, normalize.NewOrchestrator(&failingAddresses{}, nil, nil), nil)

	_, err := service.NormalizeAppointment(context.Background(), id)

	assert.ErrorIs(t, err, ErrNormalizationIncomplete)
}

func TestNormalizationService_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &memoryAppointments{}
	id := seedAppointment(t, store, "??? sem endereço")
	addresses := &failingAddresses{}
	service := NewNormalizationService(store, normalize.NewOrchestrator(addresses, nil, nil), nil)
	ctx := context.Background()

	for i := 1; i < MaxNormalizationAttempts; i++ {
		_, err := service.NormalizeAppointment(ctx, id)
		assert.ErrorIs(t, err, ErrNormalizationIncomplete)
	}
	_, err := service.NormalizeAppointment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxNormalizationAttempts, addresses.calls)

	ids, err := service.PendingIDs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = service.NormalizeAppointment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, MaxNormalizationAttempts, addresses.calls)
}

func TestNormalizationService_UnknownAppointment(t *testing.T) {
	service := NewNormalizationService(&memoryAppointments{}, normalize.NewOrchestrator(nil, nil, nil), nil)

	_, err := service.NormalizeAppointment(context.Background(), 42)

	assert.ErrorContains(t, err, "load appointment 42")
}

func TestNormalizationService_PendingIDs(t *testing.T) {
	store := &memoryAppointments{}
	first := seedAppointment(t, store, "Rua A")
	seedAppointment(t, store, "")
	third := seedAppointment(t, store, "Rua C")
	service := NewNormalizationService(store, normalize.NewOrchestrator(nil, nil, nil), nil)

	ids, err := service.PendingIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{first, third}, ids)

	ids, err = service.PendingIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{first}, ids)
}
