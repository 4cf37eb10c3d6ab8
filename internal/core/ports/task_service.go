package ports

import (
	"context"

	"github.com/taskflow/task-service/internal/core/domain"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Name        string
	Description string
	Status      domain.TaskStatus // empty = TODO
	AuthorID    string
	AssigneeID  string
	// IdempotencyKey is optional; a repeated key returns the first task.
	IdempotencyKey string
}

// UpdateTaskInput is a partial update: nil fields are left untouched.
type UpdateTaskInput struct {
	Name        *string
	Description *string
	Status      *domain.TaskStatus
	AssigneeID  *string
}

// TaskService owns the task lifecycle. Every returned task is hydrated.
type TaskService interface {
	FindAll(ctx context.Context) ([]*domain.TaskAggregate, error)
	FindByID(ctx context.Context, id string) (*domain.TaskAggregate, error)
	Create(ctx context.Context, input CreateTaskInput) (*domain.TaskAggregate, error)
	Update(ctx context.Context, id string, input UpdateTaskInput) (*domain.TaskAggregate, error)
	Delete(ctx context.Context, id string) error
	AddObserver(ctx context.Context, id, observerID string) (*domain.TaskAggregate, error)
}
