package api

import (
	"log/slog"
	"net/http"

	"github.com/elprogramador2024/gestor-tareas/internal/api/shared"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
)

// TaskHandler serves the /api/tareas endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListAll handles GET /api/tareas.
func (h *TaskHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	number, size, err := getPageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.tasks.ListAll(r.Context(), callerFromRequest(r), number, size)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskListResponse(page))
}

// ListByUser handles GET /api/tareas/usuario/{userName}.
func (h *TaskHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userName, err := getPathString(r, "userName")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	number, size, err := getPageParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.tasks.ListByUser(r.Context(), callerFromRequest(r), userName, number, size)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskListResponse(page))
}

// Get handles GET /api/tareas/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Get(r.Context(), callerFromRequest(r), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Create handles POST /api/tareas.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.tasks.Create(r.Context(), callerFromRequest(r), req.Task())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskMessageResponse(res))
}

// Update handles PUT /api/tareas.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.tasks.Update(r.Context(), callerFromRequest(r), req.Task())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskMessageResponse(res))
}

// UpdateStatus handles PATCH /api/tareas/estado.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := TaskRequest{ID: req.ID, Estado: req.Estado}.Task()
	res, err := h.tasks.UpdateStatus(r.Context(), callerFromRequest(r), patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskMessageResponse(res))
}

// Delete handles DELETE /api/tareas/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.tasks.Delete(r.Context(), callerFromRequest(r), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task removed via api", "task_id", id)
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskMessageResponse(res))
}
