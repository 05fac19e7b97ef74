package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskflow/taskflow/internal/database"
)

const taskColumns = "id, title, description, status, created_by_id, assigned_to_id, team_id, is_deleted, created_at, updated_at"

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool database.Querier
}

// NewRepository creates a new Repository backed by the given pool.
func NewRepository(pool database.Querier) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new task record. Status defaults to OPEN.
func (r *PostgresRepository) Create(ctx context.Context, t *Task) error {
	if t.Status == "" {
		t.Status = StatusOpen
	}

	query := fmt.Sprintf(`
		INSERT INTO tasks (title, description, status, created_by_id, assigned_to_id, team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, taskColumns)

	t2, err := r.scanOne(r.pool.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.CreatedByID, t.AssignedToID, t.TeamID))
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	*t = *t2
	return nil
}

// GetByID retrieves a single task by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// List retrieves tasks matching the visibility scope and filter, newest
// first, plus the total matching count. The scope becomes a WHERE predicate
// so privileged rows are never fetched and discarded in memory.
func (r *PostgresRepository) List(ctx context.Context, scope Scope, filter Filter) ([]Task, int, error) {
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	var conditions []string
	var args []any
	argIdx := 1

	if !scope.All {
		if scope.ViewerID != nil {
			conditions = append(conditions,
				fmt.Sprintf("(created_by_id = $%d OR assigned_to_id = $%d)", argIdx, argIdx+1))
			args = append(args, *scope.ViewerID, *scope.ViewerID)
			argIdx += 2
		} else {
			// team_id = NULL matches nothing, so a scope with no team sees
			// no rows rather than every unassigned task.
			conditions = append(conditions, fmt.Sprintf("team_id = $%d", argIdx))
			args = append(args, scope.TeamID)
			argIdx++
		}
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", argIdx))
		args = append(args, *filter.AssigneeID)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}

	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, taskColumns, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status,
			&t.CreatedByID, &t.AssignedToID, &t.TeamID,
			&t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating task rows: %w", err)
	}

	if tasks == nil {
		tasks = []Task{}
	}

	return tasks, total, nil
}

// Update persists the task's mutable fields in a single statement and
// refreshes updated_at regardless of which fields changed. Concurrent
// updates to the same row are last-write-wins.
func (r *PostgresRepository) Update(ctx context.Context, t *Task) error {
	query := fmt.Sprintf(`
		UPDATE tasks
		SET title = $1, description = $2, status = $3, assigned_to_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING %s`, taskColumns)

	t2, err := r.scanOne(r.pool.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.AssignedToID, t.ID))
	if err != nil {
		return err
	}

	*t = *t2
	return nil
}

// Delete removes a task row outright. The is_deleted column is reserved and
// deliberately untouched here.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status,
		&t.CreatedByID, &t.AssignedToID, &t.TeamID,
		&t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}
