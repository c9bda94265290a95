package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/coletadomiciliar/backoffice/internal/database/imports"
	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

type fakeImporter struct {
	report *services.Report
	err    error

	filename string
	data     []byte
	opts     services.ImportOptions
	calls    int

	duplicates []string
	candidates []*entities.Appointment
}

func (f *fakeImporter) ImportFile(_ context.Context, filename string, data []byte, opts services.ImportOptions) (*services.Report, error) {
	f.calls++
	f.filename = filename
	f.data = data
	f.opts = opts
	return f.report, f.err
}

func (f *fakeImporter) FindDuplicates(_ context.Context, candidates []*entities.Appointment) ([]string, error) {
	f.candidates = candidates
	return f.duplicates, f.err
}

type fakeSessions struct {
	sessions []entities.ImportSession
	limit    int
}

func (f *fakeSessions) ListRecent(_ context.Context, limit int) ([]entities.ImportSession, error) {
	f.limit = limit
	if limit < len(f.sessions) {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeSessions) GetSession(_ context.Context, id uint) (*entities.ImportSession, error) {
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			return &f.sessions[i], nil
		}
	}
	return nil, imports.ErrSessionNotFound
}

type fakeQueue struct {
	running bool
	err     error
	limits  []int
	status  map[string]backlite.TaskStatus
}

func (f *fakeQueue) EnqueueSweep(_ context.Context, limit int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.limits = append(f.limits, limit)
	return "task-1", nil
}

func (f *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := f.status[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

func (f *fakeQueue) IsRunning() bool {
	return f.running
}

// uploadRequest builds a multipart import request with the given form fields.
func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/appointments/import", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
