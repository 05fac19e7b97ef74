package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/api/handler"
	"github.com/taskflow/taskflow/internal/team"
)

type mockTeamRepository struct {
	createFn    func(ctx context.Context, tm *team.Team) error
	getByIDFn   func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	getByNameFn func(ctx context.Context, name string) (*team.Team, error)
	listFn      func(ctx context.Context) ([]team.Team, error)
	deleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTeamRepository) Create(ctx context.Context, tm *team.Team) error {
	if m.createFn != nil {
		return m.createFn(ctx, tm)
	}
	tm.ID = uuid.New()
	tm.CreatedAt = time.Now()
	return nil
}

func (m *mockTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepository) GetByName(ctx context.Context, name string) (*team.Team, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepository) List(ctx context.Context) ([]team.Team, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []team.Team{}, nil
}

func (m *mockTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func TestTeamHandler_Create(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamRepository{})

	req := makeChiRequest(t, http.MethodPost, "/teams", map[string]string{"name": "Platform"}, nil)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelopeData(t, w)
	assert.Equal(t, "Platform", data["name"])
	assert.NotEmpty(t, data["id"])
}

func TestTeamHandler_Create_DuplicateName(t *testing.T) {
	t.Parallel()

	repo := &mockTeamRepository{
		createFn: func(_ context.Context, _ *team.Team) error {
			return team.ErrDuplicateTeamName
		},
	}
	h := handler.NewTeamHandler(repo)

	req := makeChiRequest(t, http.MethodPost, "/teams", map[string]string{"name": "Platform"}, nil)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	apiErr := envelopeError(t, w)
	assert.Equal(t, "DUPLICATE_NAME", apiErr["code"])
}

func TestTeamHandler_Create_MissingName(t *testing.T) {
	t.Parallel()

	h := handler.NewTeamHandler(&mockTeamRepository{})

	req := makeChiRequest(t, http.MethodPost, "/teams", map[string]string{}, nil)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := envelopeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", apiErr["code"])
}

func TestTeamHandler_List(t *testing.T) {
	t.Parallel()

	now := time.Now()
	repo := &mockTeamRepository{
		listFn: func(_ context.Context) ([]team.Team, error) {
			return []team.Team{
				{ID: uuid.New(), Name: "Platform", CreatedAt: now},
				{ID: uuid.New(), Name: "Product", CreatedAt: now},
			}, nil
		},
	}
	h := handler.NewTeamHandler(repo)

	req := withIdentity(makeChiRequest(t, http.MethodGet, "/teams", nil, nil), adminIdentity())
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].([]interface{})
	assert.Len(t, data, 2)
	meta := env["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
}

func TestTeamHandler_Delete(t *testing.T) {
	t.Parallel()

	teamID := uuid.New()
	var deleted uuid.UUID
	repo := &mockTeamRepository{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	h := handler.NewTeamHandler(repo)

	req := withIdentity(makeChiRequest(t, http.MethodDelete, "/teams/"+teamID.String(), nil,
		map[string]string{"teamID": teamID.String()}), adminIdentity())
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, teamID, deleted)
}

func TestTeamHandler_Delete_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockTeamRepository{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return team.ErrTeamNotFound
		},
	}
	h := handler.NewTeamHandler(repo)

	id := uuid.New().String()
	req := withIdentity(makeChiRequest(t, http.MethodDelete, "/teams/"+id, nil,
		map[string]string{"teamID": id}), adminIdentity())
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_Delete_TeamHasUsers(t *testing.T) {
	t.Parallel()

	repo := &mockTeamRepository{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return team.ErrTeamHasUsers
		},
	}
	h := handler.NewTeamHandler(repo)

	id := uuid.New().String()
	req := withIdentity(makeChiRequest(t, http.MethodDelete, "/teams/"+id, nil,
		map[string]string{"teamID": id}), adminIdentity())
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	apiErr := envelopeError(t, w)
	assert.Equal(t, "TEAM_HAS_USERS", apiErr["code"])
}
