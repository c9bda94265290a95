package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// The returned stop function releases background resources held by middleware.
func NewRouter(cfg RouterConfig) (*gin.Engine, func()) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	healthController := NewHealthController(cfg.Database, cfg.Tasks, cfg.Version)
	router.GET("/health", healthController.Status)

	stop := func() {}
	api := router.Group("/api")

	if cfg.Importer != nil {
		appointmentsController := NewAppointmentsController(cfg.Importer, cfg.ImportDefaults, cfg.MaxUploadBytes, cfg.Location, logger)

		uploadHandlers := []gin.HandlerFunc{}
		if cfg.UploadRateLimit.MaxRequests > 0 {
			limiter := NewRateLimiter(cfg.UploadRateLimit)
			stop = limiter.Stop
			uploadHandlers = append(uploadHandlers, limiter.Middleware())
		}
		uploadHandlers = append(uploadHandlers, appointmentsController.Import)

		api.POST("/appointments/import", uploadHandlers...)
		api.POST("/appointments/duplicates", appointmentsController.Duplicates)
	}

	if cfg.Sessions != nil {
		importsController := NewImportsController(cfg.Sessions, logger)
		api.GET("/imports", importsController.List)
		api.GET("/imports/:id", importsController.Get)
	}

	tasksController := NewTasksController(cfg.Tasks, logger)
	api.POST("/appointments/normalize-pending", tasksController.NormalizePending)
	api.GET("/tasks/:id", tasksController.GetTaskStatus)

	return router, stop
}
