package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/tasks"
)

// TasksController enqueues normalization sweeps and reports task status.
type TasksController struct {
	queue  TaskQueue
	logger *zap.Logger
}

func NewTasksController(queue TaskQueue, logger *zap.Logger) *TasksController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TasksController{queue: queue, logger: logger}
}

type TaskStatusResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// NormalizePending enqueues a sweep over appointments still missing
// normalized data. Answers 503 when the queue is disabled or stopped.
func (tc *TasksController) NormalizePending(c *gin.Context) {
	if tc.queue == nil || !tc.queue.IsRunning() {
		respondError(c, http.StatusServiceUnavailable, "background tasks are not running")
		return
	}

	limit, ok := parseLimit(c, tasks.DefaultSweepLimit, tasks.MaxSweepLimit)
	if !ok {
		return
	}

	taskID, err := tc.queue.EnqueueSweep(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, tc.logger, err, "enqueue normalization sweep")
		return
	}

	respondAccepted(c, "normalization sweep enqueued", TaskStatusResponse{
		TaskID: taskID,
		Status: "pending",
	})
}

// GetTaskStatus returns the status of a background task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		respondError(c, http.StatusServiceUnavailable, "background tasks are disabled")
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, tc.logger, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, TaskStatusResponse{
		TaskID: taskID,
		Status: taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
