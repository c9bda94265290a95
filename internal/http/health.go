package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coletadomiciliar/backoffice/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	tasks   TaskQueue
	version string
}

func NewHealthController(db *database.Database, tasks TaskQueue, version string) *HealthController {
	return &HealthController{
		db:      db,
		tasks:   tasks,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// A stopped queue degrades normalization but does not make the API unhealthy.
	switch {
	case h.tasks == nil:
		checks["tasks"] = "disabled"
	case h.tasks.IsRunning():
		checks["tasks"] = "ok"
	default:
		checks["tasks"] = "stopped"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
