package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/task"
)

// CreateTaskRequest mirrors the fields needed for create task validation.
type CreateTaskRequest struct {
	Title      string
	AssigneeID string
}

// ValidateCreateTaskRequest validates the fields of a create task request.
func ValidateCreateTaskRequest(req CreateTaskRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 255 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
	}

	if req.AssigneeID != "" {
		if _, err := uuid.Parse(req.AssigneeID); err != nil {
			errs = append(errs, FieldError{Field: "assignee_id", Message: "assignee_id must be a valid UUID"})
		}
	}

	return errs
}

// UpdateTaskRequest mirrors the fields needed for update task validation.
// Nil fields are left unchanged and not validated.
type UpdateTaskRequest struct {
	Title      *string
	Status     *string
	AssigneeID *string
}

// ValidateUpdateTaskRequest validates the fields of an update task request.
func ValidateUpdateTaskRequest(req UpdateTaskRequest) []FieldError {
	var errs []FieldError

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			errs = append(errs, FieldError{Field: "title", Message: "title must not be empty"})
		} else if len(title) > 255 {
			errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
		}
	}

	if req.Status != nil && !task.Status(*req.Status).Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "status must be OPEN, IN_PROGRESS, or DONE"})
	}

	if req.AssigneeID != nil {
		if _, err := uuid.Parse(*req.AssigneeID); err != nil {
			errs = append(errs, FieldError{Field: "assignee_id", Message: "assignee_id must be a valid UUID"})
		}
	}

	return errs
}
