package repository

import (
	"context"
	"errors"

	"github.com/taskmaster/taskmaster-api/internal/domain/entity"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting owner. ErrDuplicateEmail maps unique-violation on users.email.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserRepository defines user persistence, including the embedded session list.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateSessions replaces the stored session list for the user.
	UpdateSessions(ctx context.Context, userID string, sessions []entity.Session) error
}

// ProjectRepository defines owner-scoped project persistence. Every method
// takes the owner's user id; rows belonging to other users are invisible.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	ListByUser(ctx context.Context, userID string) ([]entity.Project, error)
	GetByID(ctx context.Context, id, userID string) (*entity.Project, error)
	UpdateTitle(ctx context.Context, id, userID, title string) (*entity.Project, error)
	// DeleteWithTasks removes the project and all of its tasks in a single
	// transaction, returning the deleted project.
	DeleteWithTasks(ctx context.Context, id, userID string) (*entity.Project, error)
}

// TaskPatch carries the mutable task fields; nil means leave unchanged.
type TaskPatch struct {
	Title     *string
	Completed *bool
}

// TaskRepository defines task persistence. Ownership of the parent project is
// checked by callers before any of these run; methods only scope by project id.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByProject(ctx context.Context, projectID string) ([]entity.Task, error)
	Update(ctx context.Context, id, projectID string, patch TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, id, projectID string) (*entity.Task, error)
}
