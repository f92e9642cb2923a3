package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (title, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, p.Title, p.UserID)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, user_id, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []entity.Project{}
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) GetByID(ctx context.Context, id, userID string) (*entity.Project, error) {
	p := &entity.Project{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, user_id, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err := row.Scan(&p.ID, &p.Title, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) UpdateTitle(ctx context.Context, id, userID, title string) (*entity.Project, error) {
	p := &entity.Project{}
	row := r.pool.QueryRow(ctx, `
		UPDATE projects
		SET title = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
		RETURNING id, title, user_id, created_at, updated_at
	`, title, id, userID)
	if err := row.Scan(&p.ID, &p.Title, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// DeleteWithTasks removes the project and its tasks atomically so a crash can
// never leave orphaned tasks behind.
func (r *ProjectRepository) DeleteWithTasks(ctx context.Context, id, userID string) (*entity.Project, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Tasks go first inside the transaction, but only after the owner-scoped
	// project row is known to exist, so a stranger can never clear tasks.
	p := &entity.Project{}
	row := tx.QueryRow(ctx, `
		SELECT id, title, user_id, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err := row.Scan(&p.ID, &p.Title, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
