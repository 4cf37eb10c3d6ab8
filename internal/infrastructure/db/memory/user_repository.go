// Package memory provides in-process repositories used when the service runs
// without MongoDB (STORE_DRIVER=memory) and in integration tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/taskflow/task-service/internal/core/domain"
)

// UserRepository is an in-memory implementation of ports.UserRepository.
type UserRepository struct {
	users map[string]domain.User
	mu    sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindAll returns every user ordered by username.
func (r *UserRepository) FindAll(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.Username == user.Username && id != user.ID {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = *copyUser(*user)
	return nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

func copyUser(u domain.User) *domain.User {
	u.Roles = slices.Clone(u.Roles)
	return &u
}
