package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

type memoryAppointments struct {
	mu      sync.Mutex
	records []*entities.Appointment
	saveErr error
}

func (m *memoryAppointments) Save(_ context.Context, a *entities.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	a.ID = uint(len(m.records) + 1)
	m.records = append(m.records, a.Clone())
	return nil
}

func (m *memoryAppointments) ExistsAppointment(_ context.Context, patient string, date time.Time, clock, unit string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.PatientName == patient && sameDay(r.ScheduledDate, date) && r.ScheduledTime == clock && r.Unit == unit {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAppointments) GetByID(_ context.Context, id uint) (*entities.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryAppointments) UpdateNormalization(_ context.Context, a *entities.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == a.ID {
			m.records[i] = a.Clone()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryAppointments) RecordNormalizationFailure(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			r.NormalizationAttempts++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryAppointments) ListMissingNormalization(_ context.Context, maxAttempts, limit int) ([]entities.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Appointment
	for _, r := range m.records {
		if maxAttempts > 0 && r.NormalizationAttempts >= maxAttempts {
			continue
		}
		if r.NeedsAddressNormalization() || r.NeedsDocumentNormalization() {
			out = append(out, *r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type memorySessions struct {
	sessions map[uint]*entities.ImportSession
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[uint]*entities.ImportSession)}
}

func (m *memorySessions) CreateSession(_ context.Context, s *entities.ImportSession) error {
	s.ID = uint(len(m.sessions) + 1)
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memorySessions) UpdateSession(_ context.Context, s *entities.ImportSession) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return errors.New("session not found")
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

type memoryCars struct {
	cars map[string]*entities.Car
}

func (m *memoryCars) FindOrCreateCar(_ context.Context, name, unit string) (*entities.Car, bool, error) {
	if m.cars == nil {
		m.cars = make(map[string]*entities.Car)
	}
	key := name + "|" + unit
	if car, ok := m.cars[key]; ok {
		return car, false, nil
	}
	car := &entities.Car{ID: uint(len(m.cars) + 1), Name: name, Unit: unit, Status: entities.CarStatusActive}
	m.cars[key] = car
	return car, true, nil
}

type recordingEnqueuer struct {
	ids []uint
	err error
}

func (r *recordingEnqueuer) EnqueueNormalization(_ context.Context, ids ...uint) error {
	if r.err != nil {
		return r.err
	}
	r.ids = append(r.ids, ids...)
	return nil
}

type failingAddresses struct {
	calls int
}

func (f *failingAddresses) NormalizeAddress(context.Context, string) (*entities.NormalizedAddress, error) {
	f.calls++
	return nil, errors.New("completion API error (status 503)")
}

type fixedAddresses struct{}

func (fixedAddresses) NormalizeAddress(_ context.Context, raw string) (*entities.NormalizedAddress, error) {
	return &entities.NormalizedAddress{Street: raw, City: "São Paulo", State: "SP", PostalCode: "01310-100"}, nil
}

type recordingArchiver struct {
	files map[string][]byte
	err   error
}

func (r *recordingArchiver) SaveUpload(filename string, data []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.files == nil {
		r.files = make(map[string][]byte)
	}
	name := "archive/" + filename
	r.files[name] = data
	return name, nil
}
