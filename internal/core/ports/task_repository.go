package ports

import (
	"context"

	"github.com/taskflow/task-service/internal/core/domain"
)

// TaskRepository persists flat Task records keyed by id.
type TaskRepository interface {
	// FindByID returns domain.ErrTaskNotFound when no task has the id.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	FindAll(ctx context.Context) ([]*domain.Task, error)
	// Save upserts the task. The write only applies when the stored version
	// equals task.Version (or the task does not exist yet); otherwise
	// domain.ErrVersionConflict is returned. On success task.Version is
	// incremented.
	Save(ctx context.Context, task *domain.Task) error
	// DeleteByID is idempotent.
	DeleteByID(ctx context.Context, id string) error
}
