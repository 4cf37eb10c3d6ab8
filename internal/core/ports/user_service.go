package ports

import (
	"context"

	"github.com/taskflow/task-service/internal/core/domain"
)

// UpsertUserInput carries user fields for create and partial update.
// Empty strings and a nil Roles slice mean "not supplied" on update.
type UpsertUserInput struct {
	Username string
	Email    string
	Password string
	Roles    []domain.Role
}

// UserService defines use-case operations for users.
type UserService interface {
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, input UpsertUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, input UpsertUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
