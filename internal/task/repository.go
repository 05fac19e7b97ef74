package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task record is not found.
var ErrTaskNotFound = errors.New("task not found")

// Repository provides CRUD operations on the tasks table.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// List retrieves tasks visible under the scope, narrowed by the filter,
	// with the total matching count. All predicates run in the query.
	List(ctx context.Context, scope Scope, filter Filter) ([]Task, int, error)
	// Update persists every mutable field and refreshes updated_at.
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
