package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/api/middleware"
	"github.com/taskflow/taskflow/internal/api/response"
	"github.com/taskflow/taskflow/internal/api/validation"
	"github.com/taskflow/taskflow/internal/task"
)

// createTaskRequest is the request body for POST /tasks.
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	AssigneeID  string  `json:"assignee_id"`
}

// updateTaskRequest is the request body for PUT /tasks/{taskID}.
// Nil fields are left unchanged.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssigneeID  *string `json:"assignee_id"`
}

// taskResponse is the API representation of a task record.
type taskResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Status       string  `json:"status"`
	CreatedByID  string  `json:"created_by_id"`
	AssignedToID *string `json:"assigned_to_id"`
	TeamID       *string `json:"team_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toTaskResponse(t *task.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedByID: t.CreatedByID.String(),
		CreatedAt:   t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if t.AssignedToID != nil {
		s := t.AssignedToID.String()
		resp.AssignedToID = &s
	}
	if t.TeamID != nil {
		s := t.TeamID.String()
		resp.TeamID = &s
	}
	return resp
}

// TaskHandler handles task CRUD endpoints. The role gate runs as route
// middleware before any of these; the row-level policy checks run here, in
// the order: load (for mutations), authorize, validate assignee, write.
type TaskHandler struct {
	tasks task.Repository
	users task.UserDirectory
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks task.Repository, users task.UserDirectory) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users}
}

// writePolicyError maps assignment-validator denials to their responses.
// Returns false if the error was not a policy denial.
func writePolicyError(w http.ResponseWriter, err error, requestID string) bool {
	switch {
	case errors.Is(err, task.ErrAssigneeRequired):
		response.Err(w, http.StatusBadRequest, "ASSIGNEE_REQUIRED", "Manager must assign task to a user", requestID)
	case errors.Is(err, task.ErrActorWithoutTeam):
		response.Err(w, http.StatusBadRequest, "NO_TEAM", "User is not assigned to any team", requestID)
	case errors.Is(err, task.ErrInvalidAssignee):
		response.Err(w, http.StatusBadRequest, "INVALID_ASSIGNEE", "Invalid assignee", requestID)
	default:
		return false
	}
	return true
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTaskRequest(validation.CreateTaskRequest{
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	var assigneeID *uuid.UUID
	if req.AssigneeID != "" {
		id, _ := uuid.Parse(req.AssigneeID)
		assigneeID = &id
	}

	teamID, err := task.ValidateAssignee(r.Context(), *identity, assigneeID, h.users)
	if err != nil {
		if writePolicyError(w, err, requestID) {
			return
		}
		slog.Error("failed to validate assignee", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create task", requestID)
		return
	}

	t := &task.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       task.StatusOpen,
		CreatedByID:  identity.UserID,
		AssignedToID: assigneeID,
		TeamID:       teamID,
	}

	if err := h.tasks.Create(r.Context(), t); err != nil {
		slog.Error("failed to create task", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create task", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTaskResponse(t), requestID)
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	filter := task.Filter{Limit: 10}

	if v := r.URL.Query().Get("status"); v != "" {
		status := task.Status(v)
		if !status.Valid() {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "status must be OPEN, IN_PROGRESS, or DONE", requestID)
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "skip must be a non-negative integer", requestID)
			return
		}
		filter.Skip = skip
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be between 1 and 100", requestID)
			return
		}
		filter.Limit = limit
	}

	if v := r.URL.Query().Get("assignee_id"); v != "" {
		assigneeID, err := uuid.Parse(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "assignee_id must be a valid UUID", requestID)
			return
		}

		// The filter check precedes the query so a Manager's out-of-team
		// probe is refused rather than silently emptied.
		if err := task.CheckAssigneeFilter(r.Context(), *identity, assigneeID, h.users); err != nil {
			switch {
			case errors.Is(err, task.ErrAssigneeFilterForbidden):
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Members cannot filter by assignee", requestID)
			case errors.Is(err, task.ErrAssigneeOutsideTeam):
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Assignee not in your team", requestID)
			default:
				slog.Error("failed to check assignee filter", "error", err)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks", requestID)
			}
			return
		}
		filter.AssigneeID = &assigneeID
	}

	scope := task.VisibilityScope(*identity)

	tasks, total, err := h.tasks.List(r.Context(), scope, filter)
	if err != nil {
		slog.Error("failed to list tasks", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks", requestID)
		return
	}

	items := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, toTaskResponse(&tasks[i]))
	}

	response.SuccessList(w, http.StatusOK, items, total, filter.Skip, filter.Limit, requestID)
}

// Update handles PUT /tasks/{taskID}. Field changes are applied in memory
// and written in one statement, so a rejected assignee aborts the whole
// update with nothing persisted.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "task_id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateTaskRequest(validation.UpdateTaskRequest{
		Title:      req.Title,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t, err := h.tasks.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		slog.Error("failed to load task", "error", err, "id", taskID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update task", requestID)
		return
	}

	if err := task.AuthorizeMutation(*identity, t); err != nil {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Not allowed", requestID)
		return
	}

	if req.AssigneeID != nil {
		assigneeID, _ := uuid.Parse(*req.AssigneeID)
		if _, err := task.ValidateAssignee(r.Context(), *identity, &assigneeID, h.users); err != nil {
			if writePolicyError(w, err, requestID) {
				return
			}
			slog.Error("failed to validate assignee", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update task", requestID)
			return
		}
		t.AssignedToID = &assigneeID
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Status != nil {
		t.Status = task.Status(*req.Status)
	}

	if err := h.tasks.Update(r.Context(), t); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		slog.Error("failed to update task", "error", err, "id", taskID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update task", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTaskResponse(t), requestID)
}

// Delete handles DELETE /tasks/{taskID}. The delete is hard; the reserved
// is_deleted column stays untouched.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "task_id must be a valid UUID", requestID)
		return
	}

	t, err := h.tasks.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		slog.Error("failed to load task", "error", err, "id", taskID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete task", requestID)
		return
	}

	if err := task.AuthorizeMutation(*identity, t); err != nil {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Not allowed", requestID)
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Task not found", requestID)
			return
		}
		slog.Error("failed to delete task", "error", err, "id", taskID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete task", requestID)
		return
	}

	response.NoContent(w)
}
