package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
)

// TaskHandler serves the JSON task endpoints. All routes sit behind the
// API auth guard, so the user ID is always present in the context.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With("component", "task_handler"),
	}
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	tasks, err := h.taskService.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list tasks",
			"error", err,
			"user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, MsgInternalError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		status, message := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to create task",
				"error", err,
				"user_id", userID)
		}
		shared.RespondWithError(w, r, status, message)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgNotFound)
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		h.respondWithServiceError(w, r, err, taskID)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}. Absent fields are left unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgNotFound)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err, taskID)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Toggle handles POST /api/tasks/{id}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgNotFound)
		return
	}

	task, err := h.taskService.ToggleCompletion(r.Context(), userID, taskID)
	if err != nil {
		h.respondWithServiceError(w, r, err, taskID)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	taskID, err := taskIDParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, MsgNotFound)
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		h.respondWithServiceError(w, r, err, taskID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/tasks/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	stats, err := h.taskService.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to derive stats",
			"error", err,
			"user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, MsgInternalError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewStatsResponse(stats))
}

func (h *TaskHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, taskID int64) {
	status, message := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("task operation failed",
			"error", err,
			"task_id", taskID)
	}
	shared.RespondWithError(w, r, status, message)
}

// taskIDParam parses the {id} route parameter.
func taskIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
