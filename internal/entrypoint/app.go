package entrypoint

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/audit"
	"github.com/coletadomiciliar/backoffice/internal/config"
	"github.com/coletadomiciliar/backoffice/internal/database"
	"github.com/coletadomiciliar/backoffice/internal/database/appointments"
	"github.com/coletadomiciliar/backoffice/internal/database/cars"
	"github.com/coletadomiciliar/backoffice/internal/database/imports"
	"github.com/coletadomiciliar/backoffice/internal/importers"
	"github.com/coletadomiciliar/backoffice/internal/llm"
	"github.com/coletadomiciliar/backoffice/internal/normalize"
	"github.com/coletadomiciliar/backoffice/internal/services"
	"github.com/coletadomiciliar/backoffice/internal/tasks"
)

// App holds the wired application components shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Location *time.Location
	DB       *database.Database

	Appointments *appointments.Repository
	Cars         *cars.Repository
	Sessions     *imports.Repository

	// Normalizer is nil when no completion API is configured.
	Normalizer    *normalize.Orchestrator
	Normalization *services.NormalizationService
	Imports       *services.ImportService

	// Tasks is nil unless the app was built with the task queue enabled.
	Tasks *tasks.Client
}

// NewApp opens the database and wires every component. withTasks opens the
// background queue when it is also enabled in cfg.
func NewApp(cfg *config.Config, logger *zap.Logger, withTasks bool) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := cfg.Import.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(database.Options{
		Driver:  cfg.Database.Driver,
		Path:    cfg.Database.Path,
		DSN:     cfg.Database.DSN,
		Verbose: cfg.Database.Verbose,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Location:     location,
		DB:           db,
		Appointments: appointments.NewRepository(db.DB),
		Cars:         cars.NewRepository(db.DB),
		Sessions:     imports.NewRepository(db.DB),
	}

	serviceCfg := services.ImportServiceConfig{
		Pipeline:     importers.NewPipeline(importers.NewRowMapper(location), logger),
		Appointments: app.Appointments,
		Sessions:     app.Sessions,
		Cars:         app.Cars,
		Location:     location,
		Logger:       logger,
	}

	if cfg.Audit.Dir != "" {
		serviceCfg.Archiver = audit.NewArchiver(cfg.Audit.Dir)
	}

	if cfg.LLM.Enabled() {
		completer := llm.NewClient(llm.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, logger.Named("llm"))

		app.Normalizer = normalize.NewOrchestrator(
			normalize.NewLLMAddressNormalizer(completer),
			normalize.NewLLMDocumentNormalizer(completer),
			logger.Named("normalize"),
		)
		app.Normalization = services.NewNormalizationService(app.Appointments, app.Normalizer, logger)
		serviceCfg.Normalizer = app.Normalizer
	} else {
		logger.Warn("completion API is not configured, address and document normalization is disabled. Set LLM_BASE_URL to enable.")
	}

	if withTasks && cfg.Tasks.Enabled {
		client, err := app.openTasks()
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Tasks = client
		serviceCfg.Enqueuer = client
	}

	app.Imports = services.NewImportService(serviceCfg)
	return app, nil
}

func (a *App) openTasks() (*tasks.Client, error) {
	cfg := a.Config

	path := cfg.Tasks.DatabasePath
	if path == "" {
		if cfg.Database.Driver == database.DriverPostgres {
			return nil, errors.New("TASKS_DATABASE_PATH is required with the postgres driver")
		}
		path = tasks.DatabasePath(cfg.Database.Path)
	}

	taskCfg := tasks.DefaultConfig()
	if cfg.Tasks.Workers > 0 {
		taskCfg.Workers = cfg.Tasks.Workers
	}
	if cfg.Tasks.ReleaseAfter > 0 {
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
	}
	if cfg.Tasks.CleanupInterval > 0 {
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
	}

	client, err := tasks.NewClient(path, taskCfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}

	var normalizer tasks.AppointmentNormalizer
	var lister tasks.PendingLister
	if a.Normalization != nil {
		normalizer = a.Normalization
		lister = a.Normalization
	}
	client.Register(
		tasks.NewNormalizeAppointmentQueue(normalizer, a.Logger),
		tasks.NewNormalizePendingQueue(lister, client, a.Logger),
	)
	return client, nil
}

// Close releases the task queue and the database.
func (a *App) Close() {
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			a.Logger.Warn("error closing task client", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("error closing database", zap.Error(err))
	}
}
