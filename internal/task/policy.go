package task

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/auth"
)

// Policy denials. Handlers map these to HTTP statuses: the first three are
// business-rule violations (400), the rest insufficient privilege (403).
var (
	// ErrAssigneeRequired: a Manager must supply an assignee at creation.
	ErrAssigneeRequired = errors.New("manager must assign task to a user")
	// ErrActorWithoutTeam: a non-Admin actor with no team cannot create or
	// reassign; the check also guards every team-scoped lookup below.
	ErrActorWithoutTeam = errors.New("user is not assigned to any team")
	// ErrInvalidAssignee: the candidate assignee does not exist, or exists
	// outside the actor's team. The two cases are deliberately identical.
	ErrInvalidAssignee = errors.New("invalid assignee")

	// ErrAssigneeFilterForbidden: Members may not filter listings by assignee.
	ErrAssigneeFilterForbidden = errors.New("members cannot filter by assignee")
	// ErrAssigneeOutsideTeam: a Manager's assignee filter must name a teammate.
	ErrAssigneeOutsideTeam = errors.New("assignee not in your team")
	// ErrTeamMismatch: a Manager may only mutate tasks of their own team.
	ErrTeamMismatch = errors.New("task belongs to another team")
)

// Operation is the kind of task endpoint being invoked, as seen by the
// coarse role gate.
type Operation int

const (
	OpCreate Operation = iota
	OpList
	OpUpdate
	OpDelete
)

// roleGate is the static per-operation permission table. It is evaluated
// before any row-level logic and never inspects the request body or target
// row. Members reach only the list operation.
var roleGate = map[Operation][]auth.Role{
	OpCreate: {auth.RoleAdmin, auth.RoleManager},
	OpList:   {auth.RoleAdmin, auth.RoleManager, auth.RoleMember},
	OpUpdate: {auth.RoleAdmin, auth.RoleManager},
	OpDelete: {auth.RoleAdmin, auth.RoleManager},
}

// Allowed reports whether the role may invoke the operation at all.
func Allowed(role auth.Role, op Operation) bool {
	for _, r := range roleGate[op] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesAllowed returns the roles permitted to invoke the operation, for use
// with the route-level role gate middleware.
func RolesAllowed(op Operation) []auth.Role {
	return roleGate[op]
}

// Scope is the row-level visibility predicate for a caller's list
// operation. Exactly one of the three forms applies: All (Admin), TeamID
// (Manager), or ViewerID (Member: creator or assignee). The repository
// compiles it into the query; rows are never filtered in memory.
type Scope struct {
	All      bool
	TeamID   *uuid.UUID
	ViewerID *uuid.UUID
}

// VisibilityScope builds the visibility predicate for the given caller.
func VisibilityScope(id auth.Identity) Scope {
	switch id.Role {
	case auth.RoleAdmin:
		return Scope{All: true}
	case auth.RoleManager:
		// A Manager with no team matches nothing: team_id = NULL is never true.
		return Scope{TeamID: id.TeamID}
	default:
		viewerID := id.UserID
		return Scope{ViewerID: &viewerID}
	}
}

// UserDirectory is the user lookup the policy checks need. Satisfied by
// auth.UserRepository.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	FindByIDInTeam(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error)
}

// ValidateAssignee decides whether the candidate assignee is legal for the
// acting identity and returns the team the task belongs to. Used with
// identical semantics at creation and when an update changes the assignee.
//
// The returned team is the assignee's team when an Admin supplied an
// assignee, the actor's own team otherwise, and nil for an Admin without an
// assignee (the task then has no team until reassigned).
func ValidateAssignee(ctx context.Context, id auth.Identity, assigneeID *uuid.UUID, users UserDirectory) (*uuid.UUID, error) {
	if id.Role == auth.RoleManager && assigneeID == nil {
		return nil, ErrAssigneeRequired
	}

	if id.Role != auth.RoleAdmin && id.TeamID == nil {
		return nil, ErrActorWithoutTeam
	}

	if assigneeID == nil {
		if id.Role == auth.RoleAdmin {
			return nil, nil
		}
		return id.TeamID, nil
	}

	var assignee *auth.User
	var err error
	if id.Role == auth.RoleAdmin {
		assignee, err = users.GetByID(ctx, *assigneeID)
	} else {
		assignee, err = users.FindByIDInTeam(ctx, *assigneeID, *id.TeamID)
	}
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, err
	}

	if id.Role == auth.RoleAdmin {
		return assignee.TeamID, nil
	}
	return id.TeamID, nil
}

// CheckAssigneeFilter gates the optional assignee_id listing filter:
// Members are refused outright, Managers must name a member of their own
// team, Admins pass unchecked.
func CheckAssigneeFilter(ctx context.Context, id auth.Identity, assigneeID uuid.UUID, users UserDirectory) error {
	switch id.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleMember:
		return ErrAssigneeFilterForbidden
	}

	if id.TeamID == nil {
		return ErrAssigneeOutsideTeam
	}

	if _, err := users.FindByIDInTeam(ctx, assigneeID, *id.TeamID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return ErrAssigneeOutsideTeam
		}
		return err
	}

	return nil
}

// AuthorizeMutation gates update and delete on an already-loaded task. It
// must be called after the target row is read and before any field of it is
// changed. Members never reach this point; the role gate blocks them.
func AuthorizeMutation(id auth.Identity, t *Task) error {
	if id.Role == auth.RoleAdmin {
		return nil
	}

	if t.TeamID == nil || id.TeamID == nil || *t.TeamID != *id.TeamID {
		return ErrTeamMismatch
	}

	return nil
}
