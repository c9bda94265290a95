package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/config"
	http_controllers "github.com/coletadomiciliar/backoffice/internal/http"
	"github.com/coletadomiciliar/backoffice/internal/scheduler"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no task outlives the server.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// Run wires the application and serves the HTTP API.
func Run(cfg *config.Config, logger *zap.Logger, version string) error {
	logger.Info("starting collection back office", zap.String("version", version))

	app, err := NewApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer app.Close()

	var taskCtxCancel context.CancelFunc
	var sweep *scheduler.NormalizationSweepScheduler
	if app.Tasks != nil {
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		defer taskCtxCancel()
		go app.Tasks.Start(taskCtx)

		if cfg.NormalizationSweep.Enabled && app.Normalization != nil {
			sweep = scheduler.NewNormalizationSweepScheduler(app.Tasks, cfg.NormalizationSweep.Schedule, cfg.NormalizationSweep.Limit, logger)
			if err := sweep.Start(taskCtx); err != nil {
				return fmt.Errorf("failed to start normalization sweep: %w", err)
			}
		}
	} else if cfg.NormalizationSweep.Enabled {
		logger.Warn("normalization sweep needs the task queue; set TASKS_ENABLED=true")
	}

	routerCfg := http_controllers.RouterConfig{
		Database: app.DB,
		Version:  version,
		Logger:   logger.Named("http"),
		Importer: app.Imports,
		Sessions: app.Sessions,
		ImportDefaults: services.ImportOptions{
			RegisterCars:   cfg.Import.RegisterCars,
			FilterRoomCode: cfg.Import.FilterRoomCode,
			SkipDuplicates: cfg.Import.SkipDuplicates,
			BlockPastDates: cfg.Import.BlockPastDates,
			Normalize:      cfg.Import.Normalize,
		},
		MaxUploadBytes:  cfg.HTTP.MaxUploadBytes,
		Location:        app.Location,
		UploadRateLimit: http_controllers.RateLimitConfig{MaxRequests: cfg.HTTP.UploadRateLimit},
	}
	if app.Tasks != nil {
		routerCfg.Tasks = app.Tasks
	}

	router, stopRouter := http_controllers.NewRouter(routerCfg)
	defer stopRouter()

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if app.Tasks != nil && taskCtxCancel != nil {
			app.Tasks.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, logger, onShutdown)
}
