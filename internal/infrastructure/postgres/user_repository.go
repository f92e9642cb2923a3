package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
	"github.com/taskmaster/taskmaster-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	sessions, err := marshalSessions(u.Sessions)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, sessions)
		VALUES ($1, $2, $3::jsonb)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, sessions)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var sessions []byte

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, sessions, created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := row.Scan(&u.ID, &u.Email, &u.Password, &sessions, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(sessions) > 0 {
		if err := json.Unmarshal(sessions, &u.Sessions); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (r *UserRepository) UpdateSessions(ctx context.Context, userID string, sessions []entity.Session) error {
	payload, err := marshalSessions(sessions)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET sessions = $1::jsonb, updated_at = now()
		WHERE id = $2
	`, payload, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// marshalSessions keeps the stored column a JSON array even for nil slices.
func marshalSessions(sessions []entity.Session) (string, error) {
	if sessions == nil {
		sessions = []entity.Session{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
