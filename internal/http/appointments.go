package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/entities"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

// maxDuplicateCandidates bounds one duplicate-check request.
const maxDuplicateCandidates = 1000

// AppointmentsController handles spreadsheet uploads and duplicate checks.
type AppointmentsController struct {
	importer       Importer
	defaults       services.ImportOptions
	maxUploadBytes int64
	location       *time.Location
	logger         *zap.Logger
}

func NewAppointmentsController(importer Importer, defaults services.ImportOptions, maxUploadBytes int64, location *time.Location, logger *zap.Logger) *AppointmentsController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentsController{
		importer:       importer,
		defaults:       defaults,
		maxUploadBytes: maxUploadBytes,
		location:       location,
		logger:         logger,
	}
}

// Import accepts a multipart upload in the "file" field. Optional form flags
// override the configured import policies.
func (ac *AppointmentsController) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}
	if file.Size > ac.maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	opts, ok := ac.importOptions(c)
	if !ok {
		return
	}

	f, err := file.Open()
	if err != nil {
		respondInternalError(c, ac.logger, err, "open upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, ac.maxUploadBytes+1))
	if err != nil {
		respondInternalError(c, ac.logger, err, "read upload")
		return
	}
	if int64(len(data)) > ac.maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	report, err := ac.importer.ImportFile(c.Request.Context(), file.Filename, data, opts)
	if err != nil {
		if services.IsFileError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   err.Error(),
				Code:    "invalid_file",
				Details: report,
			})
			return
		}
		respondInternalError(c, ac.logger, err, "import "+file.Filename)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (ac *AppointmentsController) importOptions(c *gin.Context) (services.ImportOptions, bool) {
	opts := ac.defaults
	flags := []struct {
		name   string
		target *bool
	}{
		{"dry_run", &opts.DryRun},
		{"register_cars", &opts.RegisterCars},
		{"filter_room_code", &opts.FilterRoomCode},
		{"skip_duplicates", &opts.SkipDuplicates},
		{"block_past_dates", &opts.BlockPastDates},
		{"normalize", &opts.Normalize},
	}
	for _, flag := range flags {
		v, ok := formBool(c, flag.name, *flag.target)
		if !ok {
			return opts, false
		}
		*flag.target = v
	}
	return opts, true
}

// DuplicateCandidate is one proposed appointment in a duplicate check.
type DuplicateCandidate struct {
	CandidateID   string `json:"candidate_id" binding:"required"`
	PatientName   string `json:"patient_name"`
	ScheduledDate string `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time"` // HH:MM
	Unit          string `json:"unit"`
}

type DuplicatesRequest struct {
	Candidates []DuplicateCandidate `json:"candidates" binding:"required,dive"`
}

type DuplicatesResponse struct {
	Duplicates []string `json:"duplicates"`
}

// Duplicates reports which candidates already exist as stored appointments.
func (ac *AppointmentsController) Duplicates(c *gin.Context) {
	var req DuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if len(req.Candidates) > maxDuplicateCandidates {
		respondBadRequest(c, "too many candidates")
		return
	}

	candidates := make([]*entities.Appointment, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		appointment, err := ac.toAppointment(candidate)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		candidates = append(candidates, appointment)
	}

	ids, err := ac.importer.FindDuplicates(c.Request.Context(), candidates)
	if err != nil {
		respondInternalError(c, ac.logger, err, "find duplicates")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, DuplicatesResponse{Duplicates: ids})
}

func (ac *AppointmentsController) toAppointment(candidate DuplicateCandidate) (*entities.Appointment, error) {
	appointment := &entities.Appointment{
		CandidateID:   candidate.CandidateID,
		PatientName:   strings.TrimSpace(candidate.PatientName),
		ScheduledTime: strings.TrimSpace(candidate.ScheduledTime),
		Unit:          strings.TrimSpace(candidate.Unit),
	}
	if raw := strings.TrimSpace(candidate.ScheduledDate); raw != "" {
		date, err := time.ParseInLocation(time.DateOnly, raw, ac.location)
		if err != nil {
			return nil, errors.New("invalid scheduled_date for candidate " + candidate.CandidateID)
		}
		appointment.ScheduledDate = date
	}
	return appointment, nil
}
