package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/task-observer/internal/domain"
	errpkg "github.com/veranemoloko/task-observer/internal/errors"
)

// TaskServiceI defines the interface for task-related business logic.
type TaskServiceI interface {
	Submit(ctx context.Context, urls []string) ([]domain.TaskID, error)
	Get(ctx context.Context, id domain.TaskID) (*domain.TaskResponse, error)
	List(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
	Cancel(ctx context.Context, id domain.TaskID) error
	Stats() domain.StatsResponse
}

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	taskService TaskServiceI
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the provided service and logger.
func NewTaskHandler(taskService TaskServiceI, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
		logger:      logger,
	}
}

// CreateTask handles POST /tasks. Every URL in the body becomes its own task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.taskService.Submit(ctx, req.URLs)
	switch {
	case errors.Is(err, errpkg.ErrInvalidRequest):
		h.logger.Warn("request rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errpkg.ErrServiceClosed):
		writeError(w, http.StatusServiceUnavailable, "service is shutting down")
		return
	case err != nil:
		h.logger.Error("failed to create tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("tasks created", "count", len(ids))

	writeJSON(w, http.StatusCreated, domain.CreateTaskResponse{TaskIDs: ids})
}

// GetTask handles GET /tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := domain.TaskID(chi.URLParam(r, "taskID"))
	task, err := h.taskService.Get(r.Context(), taskID)
	if errors.Is(err, errpkg.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// ListTasks handles GET /tasks?status={status}.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatus(r.URL.Query().Get("status"))

	tasks, err := h.taskService.List(r.Context(), status)
	if errors.Is(err, errpkg.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to list tasks", "status", status, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	writeJSON(w, http.StatusOK, domain.TaskListResponse{Status: status, Tasks: tasks})
}

// CancelTask handles DELETE /tasks/{taskID}. The task is reported as
// cancelled once its worker notices, hence 202.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	taskID := domain.TaskID(chi.URLParam(r, "taskID"))
	err := h.taskService.Cancel(r.Context(), taskID)
	switch {
	case errors.Is(err, errpkg.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
		return
	case errors.Is(err, errpkg.ErrTaskFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to cancel task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID.String(),
		"status":  "cancelling",
	})
}

// Stats handles GET /stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskService.Stats())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
