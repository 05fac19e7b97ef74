package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/api/middleware"
	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/task"
)

// makeChiRequest builds an httptest request, optionally with a JSON body
// and chi route parameters.
func makeChiRequest(t *testing.T, method, path string, body any, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// withIdentity attaches an authenticated identity to the request, the way
// the auth middleware would.
func withIdentity(req *http.Request, identity *auth.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

// makeFormRequest builds a form-encoded POST request.
func makeFormRequest(path string, fields map[string]string) *http.Request {
	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(strings.Join(parts, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func envelopeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := parseEnvelope(t, w)
	data, ok := env["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", env["data"])
	return data
}

func envelopeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := parseEnvelope(t, w)
	apiErr, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected an error, got %v", env["error"])
	return apiErr
}

// --- Identity fixtures ---

func adminIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
}

func managerIdentity(teamID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "manager@example.com", Role: auth.RoleManager, TeamID: &teamID}
}

func memberIdentity(teamID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "member@example.com", Role: auth.RoleMember, TeamID: &teamID}
}

// --- Mock task repository ---

type mockTaskRepository struct {
	createFn  func(ctx context.Context, t *task.Task) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*task.Task, error)
	listFn    func(ctx context.Context, scope task.Scope, filter task.Filter) ([]task.Task, int, error)
	updateFn  func(ctx context.Context, t *task.Task) error
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, task.ErrTaskNotFound
}

func (m *mockTaskRepository) List(ctx context.Context, scope task.Scope, filter task.Filter) ([]task.Task, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, scope, filter)
	}
	return []task.Task{}, 0, nil
}

func (m *mockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock user directory ---

type mockDirectory struct {
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*auth.User, error)
	findByIDInTeamFn func(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error)
}

func (m *mockDirectory) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockDirectory) FindByIDInTeam(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error) {
	if m.findByIDInTeamFn != nil {
		return m.findByIDInTeamFn(ctx, id, teamID)
	}
	return nil, auth.ErrUserNotFound
}
