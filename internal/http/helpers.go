package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps a bounded list.
type ListResponse struct {
	Data  any `json:"data"`
	Limit int `json:"limit"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, logger *zap.Logger, err error, context string) {
	logger.Error("internal error", zap.String("context", context), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// parseLimit reads an optional positive "limit" query parameter, capped at max.
func parseLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		respondBadRequest(c, "invalid limit")
		return 0, false
	}
	if limit > max {
		limit = max
	}
	return limit, true
}

// formBool reads a boolean form field, falling back to def when absent.
func formBool(c *gin.Context, name string, def bool) (bool, bool) {
	raw, ok := c.GetPostForm(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return false, false
	}
	return v, true
}
