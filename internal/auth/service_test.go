package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow/internal/auth"
)

type mockUserRepository struct {
	createFn         func(ctx context.Context, user *auth.User) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*auth.User, error)
	getByEmailFn     func(ctx context.Context, email string) (*auth.User, error)
	findByIDInTeamFn func(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error)
	assignTeamFn     func(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error)
	listByTeamFn     func(ctx context.Context, teamID uuid.UUID) ([]auth.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *auth.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepository) FindByIDInTeam(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error) {
	if m.findByIDInTeamFn != nil {
		return m.findByIDInTeamFn(ctx, id, teamID)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepository) AssignTeam(ctx context.Context, id, teamID uuid.UUID) (*auth.User, error) {
	if m.assignTeamFn != nil {
		return m.assignTeamFn(ctx, id, teamID)
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]auth.User, error) {
	if m.listByTeamFn != nil {
		return m.listByTeamFn(ctx, teamID)
	}
	return nil, nil
}

func newTestService(users auth.UserRepository) *auth.Service {
	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	return auth.NewService(users, issuer, bcrypt.MinCost)
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	var stored *auth.User
	repo := &mockUserRepository{
		createFn: func(_ context.Context, user *auth.User) error {
			user.ID = uuid.New()
			stored = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", auth.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, auth.RoleManager, user.Role)
	assert.NotEqual(t, uuid.Nil, user.ID)

	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cretpass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass")))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepository{
		createFn: func(_ context.Context, _ *auth.User) error {
			return auth.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", auth.RoleMember)

	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepository{
		getByEmailFn: func(_ context.Context, email string) (*auth.User, error) {
			assert.Equal(t, "alice@example.com", email)
			return &auth.User{ID: userID, Email: email, PasswordHash: string(hash), Role: auth.RoleMember}, nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Login(context.Background(), "alice@example.com", "s3cretpass")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepository{
		getByEmailFn: func(_ context.Context, email string) (*auth.User, error) {
			return &auth.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestService(repo)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrongpass")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepository{})

	_, err := svc.Login(context.Background(), "nobody@example.com", "s3cretpass")

	// Indistinguishable from a wrong password.
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	teamID := uuid.New()
	repo := &mockUserRepository{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*auth.User, error) {
			assert.Equal(t, userID, id)
			return &auth.User{ID: id, Email: "alice@example.com", Role: auth.RoleManager, TeamID: &teamID}, nil
		},
	}
	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	svc := auth.NewService(repo, issuer, bcrypt.MinCost)

	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	identity, err := svc.Authenticate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, auth.RoleManager, identity.Role)
	require.NotNil(t, identity.TeamID)
	assert.Equal(t, teamID, *identity.TeamID)
}

func TestService_Authenticate_BadToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockUserRepository{})

	_, err := svc.Authenticate(context.Background(), "not.a.token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_Authenticate_DeletedSubject(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	svc := auth.NewService(&mockUserRepository{}, issuer, bcrypt.MinCost)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
