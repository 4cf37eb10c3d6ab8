package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/taskflow/task-service/internal/core/domain"
)

// TaskRepository is an in-memory implementation of ports.TaskRepository with
// the same version check as the MongoDB store.
type TaskRepository struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// FindAll returns every task ordered by creation time.
func (r *TaskRepository) FindAll(_ context.Context) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *TaskRepository) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.tasks[task.ID]
	switch {
	case exists && stored.Version != task.Version:
		return domain.ErrVersionConflict
	case !exists && task.Version != 0:
		return domain.ErrVersionConflict
	}

	task.Version++
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *TaskRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks, id)
	return nil
}
