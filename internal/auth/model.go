package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. The rules that hang off a role are
// per-operation tables, not a numeric ranking: Managers carry obligations
// (must assign, team-scoped) that Admins do not.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	TeamID       *uuid.UUID // nil for Admins in practice
	CreatedAt    time.Time
}

// Identity is the resolved caller for one request. It is derived from the
// stored User exactly once per request by the auth middleware and carried in
// the request context; it is never persisted.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
	TeamID *uuid.UUID
}
