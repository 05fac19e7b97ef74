package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskflow/taskflow/internal/database"
)

const userColumns = "id, email, password_hash, role, team_id, created_at"

// PostgresRepository implements UserRepository using pgx.
type PostgresRepository struct {
	pool database.Querier
}

// NewRepository creates a new UserRepository backed by the given pool.
func NewRepository(pool database.Querier) UserRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, password_hash, role, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, u.Email, u.PasswordHash, u.Role, u.TeamID).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by their UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a single user by their unique email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// FindByIDInTeam resolves a user only if they belong to the given team. The
// team constraint is part of the query so an out-of-team user is
// indistinguishable from a missing one.
func (r *PostgresRepository) FindByIDInTeam(ctx context.Context, id, teamID uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND team_id = $2`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id, teamID))
}

// AssignTeam moves a user into a team and returns the updated record.
func (r *PostgresRepository) AssignTeam(ctx context.Context, id, teamID uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET team_id = $1
		WHERE id = $2
		RETURNING %s`, userColumns)

	u, err := r.scanOne(r.pool.QueryRow(ctx, query, teamID, id))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrUnknownTeam
		}
		return nil, err
	}
	return u, nil
}

// ListByTeam retrieves all users in a team ordered by creation time.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE team_id = $1
		ORDER BY created_at ASC`, userColumns)

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.TeamID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}

	return users, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.TeamID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
