package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"

	"github.com/coletadomiciliar/backoffice/internal/tasks"
)

func newTasksRouter(t *testing.T, queue TaskQueue) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, stop := NewRouter(RouterConfig{Tasks: queue})
	t.Cleanup(stop)
	return router
}

func TestTasksController_NormalizePending(t *testing.T) {
	t.Run("enqueues a sweep", func(t *testing.T) {
		queue := &fakeQueue{running: true}
		router := newTasksRouter(t, queue)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/appointments/normalize-pending", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), "task-1")
		assert.Equal(t, []int{tasks.DefaultSweepLimit}, queue.limits)
	})

	t.Run("passes the limit", func(t *testing.T) {
		queue := &fakeQueue{running: true}
		router := newTasksRouter(t, queue)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/appointments/normalize-pending?limit=10", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []int{10}, queue.limits)
	})

	t.Run("unavailable when tasks are disabled", func(t *testing.T) {
		router := newTasksRouter(t, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/appointments/normalize-pending", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unavailable when the queue is stopped", func(t *testing.T) {
		queue := &fakeQueue{}
		router := newTasksRouter(t, queue)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/appointments/normalize-pending", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Empty(t, queue.limits)
	})

	t.Run("enqueue failure is an internal error", func(t *testing.T) {
		router := newTasksRouter(t, &fakeQueue{running: true, err: errors.New("disk full")})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/appointments/normalize-pending", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{running: true, status: map[string]backlite.TaskStatus{
		"done": backlite.TaskStatusSuccess,
	}}
	router := newTasksRouter(t, queue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/tasks/done", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"task_id": "done", "status": "success"}`, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/tasks/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
