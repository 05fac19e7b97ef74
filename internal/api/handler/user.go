package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/api/middleware"
	"github.com/taskflow/taskflow/internal/api/response"
	"github.com/taskflow/taskflow/internal/auth"
)

type assignTeamRequest struct {
	TeamID string `json:"team_id"`
}

type userWithTeamResponse struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	TeamID *string `json:"team_id"`
}

func toUserWithTeamResponse(u *auth.User) userWithTeamResponse {
	resp := userWithTeamResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  string(u.Role),
	}
	if u.TeamID != nil {
		s := u.TeamID.String()
		resp.TeamID = &s
	}
	return resp
}

// UserHandler handles the Admin-only user management endpoints.
type UserHandler struct {
	users auth.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users auth.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// AssignTeam handles PUT /users/{userID}/team. Managers and Members acquire
// their team through this endpoint; without it a fresh install has no way
// to establish team scoping.
func (h *UserHandler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "user_id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req assignTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "team_id must be a valid UUID", requestID)
		return
	}

	user, err := h.users.AssignTeam(r.Context(), userID, teamID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		if errors.Is(err, auth.ErrUnknownTeam) {
			response.Err(w, http.StatusBadRequest, "UNKNOWN_TEAM", "Team does not exist", requestID)
			return
		}
		slog.Error("failed to assign team", "error", err, "userId", userID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to assign team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserWithTeamResponse(user), requestID)
}
