package task

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of task states.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents a row in the tasks table. TeamID and CreatedByID never
// change after creation. TeamID is nil only for tasks an Admin created
// without an assignee. IsDeleted is a reserved column: deletes are hard and
// no query filters on it.
type Task struct {
	ID           uuid.UUID
	Title        string
	Description  *string
	Status       Status
	CreatedByID  uuid.UUID
	AssignedToID *uuid.UUID
	TeamID       *uuid.UUID
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter holds optional filters and pagination for listing tasks. Filters
// are combined with the caller's visibility Scope inside the query itself;
// pagination is applied after all predicates and is not a security boundary.
type Filter struct {
	Status     *Status
	AssigneeID *uuid.UUID
	Skip       int
	Limit      int // default 10
}
