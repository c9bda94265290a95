package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/database/imports"
	"github.com/coletadomiciliar/backoffice/internal/entities"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 200
)

// ImportsController exposes the import session history.
type ImportsController struct {
	sessions SessionLister
	logger   *zap.Logger
}

func NewImportsController(sessions SessionLister, logger *zap.Logger) *ImportsController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportsController{sessions: sessions, logger: logger}
}

func (ic *ImportsController) List(c *gin.Context) {
	limit, ok := parseLimit(c, defaultSessionLimit, maxSessionLimit)
	if !ok {
		return
	}

	sessions, err := ic.sessions.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, ic.logger, err, "list import sessions")
		return
	}
	if sessions == nil {
		sessions = []entities.ImportSession{}
	}
	c.JSON(http.StatusOK, ListResponse{Data: sessions, Limit: limit})
}

func (ic *ImportsController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid id")
		return
	}

	session, err := ic.sessions.GetSession(c.Request.Context(), uint(id))
	if errors.Is(err, imports.ErrSessionNotFound) {
		respondNotFound(c, "import session")
		return
	}
	if err != nil {
		respondInternalError(c, ic.logger, err, "get import session")
		return
	}
	c.JSON(http.StatusOK, session)
}
