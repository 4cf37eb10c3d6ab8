package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
	"github.com/taskflow/task-service/internal/pkg/metrics"
)

// maxWriteAttempts bounds the read-modify-write retries after a version conflict.
const maxWriteAttempts = 3

// KeyedExecutor runs fn so that calls sharing a key never overlap.
type KeyedExecutor interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
}

// TaskOption configures optional collaborators of a TaskService.
type TaskOption func(*TaskService)

// WithIdempotencyStore enables Idempotency-Key handling on create.
func WithIdempotencyStore(store ports.IdempotencyStore) TaskOption {
	return func(s *TaskService) { s.idem = store }
}

// WithExecutor funnels mutations of the same task through exec.
func WithExecutor(exec KeyedExecutor) TaskOption {
	return func(s *TaskService) { s.exec = exec }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TaskOption {
	return func(s *TaskService) { s.now = now }
}

type TaskService struct {
	tasks    ports.TaskRepository
	users    ports.UserRepository
	resolver *Resolver
	idem     ports.IdempotencyStore
	exec     KeyedExecutor
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, logger zerolog.Logger, opts ...TaskOption) *TaskService {
	s := &TaskService{
		tasks:    tasks,
		users:    users,
		resolver: NewResolver(users, logger),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) FindAll(ctx context.Context) ([]*domain.TaskAggregate, error) {
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveAll(ctx, tasks)
}

func (s *TaskService) FindByID(ctx context.Context, id string) (*domain.TaskAggregate, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, task)
}

// Create stores a new task and returns it hydrated. When an idempotency key is
// supplied and was already used, the task created under that key is returned
// and nothing new is stored.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (agg *domain.TaskAggregate, err error) {
	defer func() { observeMutation("create", err) }()

	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.Validationf("name is required")
	}
	if input.AuthorID == "" {
		return nil, domain.Validationf("authorId is required")
	}
	if input.Status == "" {
		input.Status = domain.StatusTodo
	} else if !input.Status.Valid() {
		return nil, domain.Validationf("unknown status %q", input.Status)
	}

	key := input.IdempotencyKey
	if key == "" || s.idem == nil {
		return s.create(ctx, input)
	}

	// Creates sharing a key are serialized so a concurrent retry cannot slip
	// past the lookup.
	err = s.serialize(ctx, "idempotency:"+key, func(ctx context.Context) error {
		if prev, ok := s.replay(ctx, key); ok {
			agg = prev
			return nil
		}
		created, err := s.create(ctx, input)
		if err != nil {
			return err
		}
		if err := s.idem.Remember(ctx, key, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to remember idempotency key")
		}
		agg = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *TaskService) create(ctx context.Context, input ports.CreateTaskInput) (*domain.TaskAggregate, error) {
	now := s.stamp(time.Time{})
	task := &domain.Task{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		AuthorID:    input.AuthorID,
		AssigneeID:  input.AssigneeID,
		ObserverIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	agg, err := s.resolver.Resolve(ctx, task)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("author_id", task.AuthorID).Msg("task created")
	return agg, nil
}

// replay returns the task previously created under key. Store failures are
// logged and treated as a miss.
func (s *TaskService) replay(ctx context.Context, key string) (*domain.TaskAggregate, bool) {
	taskID, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	agg, err := s.FindByID(ctx, taskID)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Str("task_id", taskID).Msg("idempotent replay target unavailable")
		return nil, false
	}
	metrics.IdempotentReplaysTotal.Inc()
	s.logger.Info().Str("idempotency_key", key).Str("task_id", taskID).Msg("idempotent replay")
	return agg, true
}

// Update merges every non-nil field of input into the stored task.
func (s *TaskService) Update(ctx context.Context, id string, input ports.UpdateTaskInput) (agg *domain.TaskAggregate, err error) {
	defer func() { observeMutation("update", err) }()

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, domain.Validationf("name must not be blank")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, domain.Validationf("unknown status %q", *input.Status)
	}

	return s.mutate(ctx, id, func(task *domain.Task) {
		if input.Name != nil {
			task.Name = *input.Name
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.AssigneeID != nil {
			task.AssigneeID = *input.AssigneeID
		}
	})
}

// Delete removes the task. Deleting a missing task is not an error.
func (s *TaskService) Delete(ctx context.Context, id string) (err error) {
	defer func() { observeMutation("delete", err) }()

	err = s.serialize(ctx, id, func(ctx context.Context) error {
		return s.tasks.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

// AddObserver inserts observerID into the task's observer set. Adding an
// existing observer leaves the set unchanged but still advances updatedAt.
func (s *TaskService) AddObserver(ctx context.Context, id, observerID string) (agg *domain.TaskAggregate, err error) {
	defer func() { observeMutation("add_observer", err) }()

	if _, err := s.users.FindByID(ctx, observerID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(task *domain.Task) {
		task.AddObserver(observerID)
	})
}

// mutate runs a read-modify-write cycle on one task, retrying on version
// conflicts.
func (s *TaskService) mutate(ctx context.Context, id string, apply func(*domain.Task)) (*domain.TaskAggregate, error) {
	var agg *domain.TaskAggregate
	err := s.serialize(ctx, id, func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			task, err := s.tasks.FindByID(ctx, id)
			if err != nil {
				return err
			}
			apply(task)
			task.UpdatedAt = s.stamp(task.UpdatedAt)

			resolved, err := s.resolver.Resolve(ctx, task)
			if err != nil {
				return err
			}

			err = s.tasks.Save(ctx, task)
			if errors.Is(err, domain.ErrVersionConflict) && attempt < maxWriteAttempts {
				metrics.VersionConflictsTotal.Inc()
				s.logger.Warn().Str("task_id", id).Int("attempt", attempt).Msg("version conflict, retrying")
				continue
			}
			if err != nil {
				return err
			}
			agg = resolved
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *TaskService) serialize(ctx context.Context, key string, fn func(context.Context) error) error {
	if s.exec == nil {
		return fn(ctx)
	}
	return s.exec.Do(ctx, key, fn)
}

// stamp returns the current time at store precision, strictly after prev.
func (s *TaskService) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func observeMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.TaskMutationsTotal.WithLabelValues(operation, outcome).Inc()
}
