package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when a user with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUnknownTeam is returned when assigning a user to a team that does not exist.
var ErrUnknownTeam = errors.New("unknown team")

// UserRepository provides operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDInTeam resolves a user only if they belong to the given team.
	FindByIDInTeam(ctx context.Context, id, teamID uuid.UUID) (*User, error)
	AssignTeam(ctx context.Context, id, teamID uuid.UUID) (*User, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error)
}
