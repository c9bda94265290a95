package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/duplicates"
	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/fleet"
	"github.com/coletadomiciliar/backoffice/internal/importers"
	"github.com/coletadomiciliar/backoffice/internal/normalize"
)

// ImportOptions are the caller policies for one import.
type ImportOptions struct {
	// DryRun parses, normalizes and checks duplicates without writing anything.
	DryRun         bool `json:"dry_run"`
	RegisterCars   bool `json:"register_cars"`
	FilterRoomCode bool `json:"filter_room_code"`
	SkipDuplicates bool `json:"skip_duplicates"`
	BlockPastDates bool `json:"block_past_dates"`
	Normalize      bool `json:"normalize"`
}

// Report is the outcome of ImportFile: the pipeline result plus what the
// service did with the accepted records.
type Report struct {
	importers.ImportResult

	SessionID     uint            `json:"session_id,omitempty"`
	DryRun        bool            `json:"dry_run"`
	SavedRows     int             `json:"saved_rows"`
	DuplicateRows int             `json:"duplicate_rows"`
	PastDateRows  int             `json:"past_date_rows"`
	Warnings      []string        `json:"warnings,omitempty"`
	Normalization normalize.Stats `json:"normalization"`
	Deferred      int             `json:"deferred_normalizations"`
}

// FileError wraps a file-level rejection: bad extension, empty file or
// missing headers. No row was processed.
type FileError struct {
	Err error
}

func (e *FileError) Error() string {
	return e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ImportServiceConfig lists the collaborators of an ImportService.
// Cars, Normalizer, Enqueuer and Archiver are optional.
type ImportServiceConfig struct {
	Pipeline     *importers.Pipeline
	Appointments AppointmentStore
	Sessions     SessionStore
	Cars         fleet.CarStore
	Normalizer   Normalizer
	Enqueuer     NormalizationEnqueuer
	Archiver     UploadArchiver
	Location     *time.Location
	Logger       *zap.Logger
}

// ImportService runs spreadsheet imports end to end: parse, normalize,
// apply caller policies and persist.
type ImportService struct {
	pipeline     *importers.Pipeline
	appointments AppointmentStore
	sessions     SessionStore
	cars         fleet.CarStore
	detector     *duplicates.Detector
	normalizer   Normalizer
	enqueuer     NormalizationEnqueuer
	archiver     UploadArchiver
	location     *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewImportService creates a new ImportService.
func NewImportService(cfg ImportServiceConfig) *ImportService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &ImportService{
		pipeline:     cfg.Pipeline,
		appointments: cfg.Appointments,
		sessions:     cfg.Sessions,
		cars:         cfg.Cars,
		detector:     duplicates.NewDetector(cfg.Appointments),
		normalizer:   cfg.Normalizer,
		enqueuer:     cfg.Enqueuer,
		archiver:     cfg.Archiver,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// FindDuplicates returns the CandidateIDs of candidates that already exist.
func (s *ImportService) FindDuplicates(ctx context.Context, candidates []*entities.Appointment) ([]string, error) {
	return s.detector.Detect(ctx, candidates)
}

// ImportFile imports one uploaded file. File-level rejections return the
// failed report together with a *FileError; store failures abort the import
// and return a plain error.
func (s *ImportService) ImportFile(ctx context.Context, filename string, data []byte, opts ImportOptions) (*Report, error) {
	report := &Report{DryRun: opts.DryRun}

	var session *entities.ImportSession
	if !opts.DryRun {
		session = &entities.ImportSession{
			FileName:  filename,
			Status:    entities.ImportStatusRunning,
			StartedAt: s.now(),
		}
		if err := s.sessions.CreateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to create import session: %w", err)
		}
		report.SessionID = session.ID

		if s.archiver != nil {
			archived, err := s.archiver.SaveUpload(filename, data)
			if err != nil {
				s.logger.Warn("failed to archive upload", zap.String("file", filename), zap.Error(err))
			} else {
				session.ArchivedFile = archived
			}
		}
	}

	var registrar importers.CarRegistrar
	var fleetRegistrar *fleet.Registrar
	if opts.RegisterCars && !opts.DryRun && s.cars != nil {
		fleetRegistrar = fleet.NewRegistrar(s.cars, s.logger)
		registrar = fleetRegistrar
	}

	result, err := s.pipeline.Import(ctx, filename, data, importers.Options{FilterRoomCode: opts.FilterRoomCode}, registrar)
	report.ImportResult = result
	if err != nil {
		s.logger.Warn("import rejected", zap.String("file", filename), zap.Error(err))
		s.completeSession(ctx, session, report)
		return report, &FileError{Err: err}
	}

	records := result.Appointments
	if opts.Normalize && s.normalizer != nil {
		records, report.Normalization = s.normalizer.Normalize(ctx, records)
	}

	accepted, pending, err := s.persist(ctx, records, session, opts, report)
	report.Appointments = accepted
	if err != nil {
		report.Success = false
		report.Errors = append(report.Errors, err.Error())
		s.completeSession(ctx, session, report)
		return report, err
	}

	if len(pending) > 0 && s.enqueuer != nil && s.normalizer != nil {
		if err := s.enqueuer.EnqueueNormalization(ctx, pending...); err != nil {
			s.logger.Warn("failed to enqueue deferred normalization",
				zap.Int("appointments", len(pending)),
				zap.Error(err),
			)
		} else {
			report.Deferred = len(pending)
		}
	}

	s.completeSession(ctx, session, report)

	s.logger.Info("import finished",
		zap.String("file", filename),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("valid_rows", report.ValidRows),
		zap.Int("invalid_rows", report.InvalidRows),
		zap.Int("saved_rows", report.SavedRows),
		zap.Int("duplicate_rows", report.DuplicateRows),
		zap.Int("past_date_rows", report.PastDateRows),
		zap.Int("cars_created", report.CarsCreated),
		zap.Int("deferred", report.Deferred),
	)
	return report, nil
}

// persist applies the past-date and duplicate policies and saves records one
// at a time, so a later row sees the rows saved before it. It returns the
// accepted records and the IDs of saved records whose normalization failed.
func (s *ImportService) persist(ctx context.Context, records []*entities.Appointment, session *entities.ImportSession, opts ImportOptions, report *Report) ([]*entities.Appointment, []uint, error) {
	today := calendarDay(s.now().In(s.location))
	accepted := make([]*entities.Appointment, 0, len(records))
	var pending []uint

	failed := make(map[string]struct{}, len(report.Normalization.Failed))
	for _, candidateID := range report.Normalization.Failed {
		failed[candidateID] = struct{}{}
	}

	for _, record := range records {
		if opts.BlockPastDates && !record.ScheduledDate.IsZero() && calendarDay(record.ScheduledDate).Before(today) {
			report.PastDateRows++
			report.Errors = append(report.Errors, rowMessage(record, "scheduled date is in the past"))
			continue
		}

		if opts.SkipDuplicates {
			duplicate, err := s.detector.IsDuplicate(ctx, record)
			if err != nil {
				return accepted, pending, err
			}
			if duplicate {
				report.DuplicateRows++
				report.Warnings = append(report.Warnings, rowMessage(record, "duplicate appointment skipped"))
				continue
			}
		}

		if opts.DryRun {
			accepted = append(accepted, record)
			continue
		}

		if session != nil {
			id := session.ID
			record.ImportSessionID = &id
		}
		if err := s.appointments.Save(ctx, record); err != nil {
			report.Errors = append(report.Errors, rowMessage(record, "failed to save: "+err.Error()))
			continue
		}
		report.SavedRows++
		accepted = append(accepted, record)

		if _, ok := failed[record.CandidateID]; ok {
			pending = append(pending, record.ID)
		}
	}

	return accepted, pending, nil
}

func (s *ImportService) completeSession(ctx context.Context, session *entities.ImportSession, report *Report) {
	if session == nil {
		return
	}

	completedAt := s.now()
	session.Format = report.Format
	session.Status = sessionStatus(report)
	session.TotalRows = report.TotalRows
	session.ValidRows = report.ValidRows
	session.InvalidRows = report.InvalidRows
	session.FilteredRows = report.FilteredRows
	session.SavedRows = report.SavedRows
	session.DuplicateRows = report.DuplicateRows
	session.PastDateRows = report.PastDateRows
	session.CarsCreated = report.CarsCreated
	session.AddressesNormalized = report.Normalization.AddressesNormalized
	session.DocumentsNormalized = report.Normalization.DocumentsNormalized
	session.CompletedAt = &completedAt
	if len(report.Errors) > 0 {
		if errorsJSON, err := json.Marshal(report.Errors); err == nil {
			session.Errors = string(errorsJSON)
		}
	}

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		s.logger.Error("failed to complete import session",
			zap.Uint("session_id", session.ID),
			zap.Error(err),
		)
	}
}

func sessionStatus(report *Report) entities.ImportStatus {
	switch {
	case !report.Success:
		return entities.ImportStatusFailed
	case len(report.Errors) > 0:
		return entities.ImportStatusPartial
	default:
		return entities.ImportStatusCompleted
	}
}

func rowMessage(record *entities.Appointment, message string) string {
	return (&importers.RowError{Line: record.SourceRow, Message: message}).Error()
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFileError reports whether err is a file-level rejection.
func IsFileError(err error) bool {
	var fileErr *FileError
	return errors.As(err, &fileErr)
}
