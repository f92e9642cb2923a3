package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, completed, project_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Completed, t.ProjectID)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, completed, project_id, created_at, updated_at
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id, projectID string, patch repository.TaskPatch) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    completed = COALESCE($2, completed),
		    updated_at = now()
		WHERE id = $3 AND project_id = $4
		RETURNING id, title, completed, project_id, created_at, updated_at
	`, patch.Title, patch.Completed, id, projectID)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, projectID string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND project_id = $2
		RETURNING id, title, completed, project_id, created_at, updated_at
	`, id, projectID)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
