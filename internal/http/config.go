package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/database"
	"github.com/coletadomiciliar/backoffice/internal/services"
)

// DefaultMaxUploadBytes bounds the size of an uploaded spreadsheet.
const DefaultMaxUploadBytes = 10 << 20

// RouterConfig holds all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Database *database.Database
	Version  string
	Logger   *zap.Logger

	Importer Importer
	Sessions SessionLister
	// Tasks is nil when the background queue is disabled.
	Tasks TaskQueue

	// ImportDefaults apply to form flags the caller omits.
	ImportDefaults services.ImportOptions
	MaxUploadBytes int64
	Location       *time.Location

	// UploadRateLimit caps import requests per client; zero disables it.
	UploadRateLimit RateLimitConfig
}
