package ports

import (
	"context"

	"github.com/taskflow/task-service/internal/core/domain"
)

// UserRepository persists User records keyed by id.
type UserRepository interface {
	// FindByID returns domain.ErrUserNotFound when no user has the id.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no user has the name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	// Save inserts or replaces the user. A username taken by another user
	// yields domain.ErrUserExists.
	Save(ctx context.Context, user *domain.User) error
	// DeleteByID is idempotent.
	DeleteByID(ctx context.Context, id string) error
}
