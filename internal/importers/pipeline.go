package importers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

// CarRegistrar finds or creates the car referenced by a room-code payload.
// Implementations are scoped to a single import run.
type CarRegistrar interface {
	Register(ctx context.Context, payload string) (created bool, err error)
}

// ImportResult aggregates one import run. ValidRows + InvalidRows equals
// TotalRows unless FilteredRows rows were dropped by the room-code filter.
type ImportResult struct {
	Success      bool                    `json:"success"`
	Format       string                  `json:"format,omitempty"`
	Appointments []*entities.Appointment `json:"appointments"`
	Errors       []string                `json:"errors,omitempty"`
	TotalRows    int                     `json:"total_rows"`
	ValidRows    int                     `json:"valid_rows"`
	InvalidRows  int                     `json:"invalid_rows"`
	FilteredRows int                     `json:"filtered_rows"`
	CarsCreated  int                     `json:"cars_created"`
}

// Options control the optional pipeline stages.
type Options struct {
	// FilterRoomCode drops rows whose room name is not a room code before mapping.
	FilterRoomCode bool
}

// Pipeline handles the common import workflow:
// load → validate headers → filter → map rows → register cars.
type Pipeline struct {
	mapper *RowMapper
	logger *zap.Logger
}

// NewPipeline creates a pipeline around the given row mapper.
func NewPipeline(mapper *RowMapper, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{mapper: mapper, logger: logger}
}

// Import loads a file and maps its rows. File-level failures return an error
// together with a failed result carrying the single message; no rows are processed.
// registrar may be nil to skip car registration.
func (p *Pipeline) Import(ctx context.Context, filename string, data []byte, opts Options, registrar CarRegistrar) (ImportResult, error) {
	table, err := Load(filename, data)
	if err != nil {
		return failedResult(err), err
	}
	if err := ValidateHeaders(table); err != nil {
		return failedResult(err), err
	}

	total := len(table.Rows)
	filtered := 0
	if opts.FilterRoomCode {
		filtered = FilterByRoomCode(table)
	}

	result := p.Run(ctx, table, registrar)
	result.TotalRows = total
	result.FilteredRows = filtered

	p.logger.Info("import parsed",
		zap.String("file", filename),
		zap.String("format", table.Format),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("valid_rows", result.ValidRows),
		zap.Int("invalid_rows", result.InvalidRows),
		zap.Int("filtered_rows", result.FilteredRows),
		zap.Int("cars_created", result.CarsCreated),
	)
	return result, nil
}

// Run maps every row of an already loaded table, sequentially.
func (p *Pipeline) Run(ctx context.Context, table *Table, registrar CarRegistrar) ImportResult {
	result := ImportResult{Format: table.Format, TotalRows: len(table.Rows)}

	for _, row := range table.Rows {
		appointment, err := p.mapRow(row)
		if err != nil {
			result.InvalidRows++
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if registrar != nil && appointment.CarPayload != "" {
			created, err := registrar.Register(ctx, appointment.CarPayload)
			if err != nil {
				p.logger.Warn("car registration failed",
					zap.Int("row", row.Line),
					zap.String("car", appointment.CarPayload),
					zap.Error(err),
				)
			} else if created {
				result.CarsCreated++
			}
		}

		result.ValidRows++
		result.Appointments = append(result.Appointments, appointment)
	}

	result.Success = result.ValidRows > 0 || result.InvalidRows == 0
	return result
}

// mapRow turns panics raised while building a candidate into row errors.
func (p *Pipeline) mapRow(row RawRow) (appointment *entities.Appointment, err error) {
	defer func() {
		if r := recover(); r != nil {
			appointment = nil
			err = &RowError{Line: row.Line, Message: fmt.Sprintf("unexpected error: %v", r)}
		}
	}()
	return p.mapper.Map(row)
}

func failedResult(err error) ImportResult {
	return ImportResult{Success: false, Errors: []string{err.Error()}}
}
