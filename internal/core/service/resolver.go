package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
	"github.com/taskflow/task-service/internal/pkg/metrics"
)

const (
	tracerName = "github.com/taskflow/task-service/internal/core/service"

	maxObserverLookups = 8
	maxTaskResolutions = 16
)

// joinOutcome tags the result of one user lookup so the aggregation step can
// tell "abort" apart from "degrade and continue".
type joinOutcome int

const (
	joinResolved joinOutcome = iota
	joinMissing
	joinFailed
)

type join struct {
	id      string
	user    *domain.User
	outcome joinOutcome
	err     error
}

// Resolver hydrates flat tasks by fetching their author, assignee and
// observers concurrently. Author and assignee are mandatory joins; observers
// are a soft join where unresolvable ids are dropped.
type Resolver struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewResolver(users ports.UserRepository, log zerolog.Logger) *Resolver {
	return &Resolver{users: users, log: log}
}

// Resolve returns the hydrated form of task. It fails with
// domain.ErrReferenceNotFound when the author or the assignee does not exist.
// The stored task is not modified.
func (r *Resolver) Resolve(ctx context.Context, task *domain.Task) (_ *domain.TaskAggregate, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "task.resolve", trace.WithAttributes(
		attribute.String("task.id", task.ID),
		attribute.Int("task.observers.requested", len(task.ObserverIDs)),
	))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.TaskResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		span.End()
	}()

	var (
		author    join
		assignee  join
		observers []join
	)

	// A failed mandatory join cancels gctx, abandoning the sibling lookups.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		author = r.lookup(gctx, task.AuthorID)
		return mandatory("author", author)
	})
	if task.AssigneeID != "" {
		g.Go(func() error {
			assignee = r.lookup(gctx, task.AssigneeID)
			return mandatory("assignee", assignee)
		})
	}
	g.Go(func() error {
		observers = r.lookupAll(gctx, task.ObserverIDs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve task %s: %w", task.ID, err)
	}

	agg := &domain.TaskAggregate{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Author:      author.user,
		Assignee:    assignee.user,
		Observers:   r.collectObservers(task.ID, observers),
	}
	span.SetAttributes(attribute.Int("task.observers.resolved", len(agg.Observers)))
	return agg, nil
}

// ResolveAll hydrates tasks concurrently, preserving their order. A task
// whose author or assignee no longer exists is left out of the result; any
// other failure fails the whole listing.
func (r *Resolver) ResolveAll(ctx context.Context, tasks []*domain.Task) ([]*domain.TaskAggregate, error) {
	resolved := make([]*domain.TaskAggregate, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTaskResolutions)
	for i, t := range tasks {
		g.Go(func() error {
			agg, err := r.Resolve(gctx, t)
			if errors.Is(err, domain.ErrReferenceNotFound) {
				metrics.TasksOmittedTotal.Inc()
				r.log.Warn().Err(err).Str("task_id", t.ID).Msg("task has a dangling user reference, omitted from listing")
				return nil
			}
			if err != nil {
				return err
			}
			resolved[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*domain.TaskAggregate, 0, len(resolved))
	for _, agg := range resolved {
		if agg != nil {
			out = append(out, agg)
		}
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, id string) join {
	u, err := r.users.FindByID(ctx, id)
	switch {
	case err == nil:
		return join{id: id, user: u, outcome: joinResolved}
	case errors.Is(err, domain.ErrUserNotFound):
		return join{id: id, outcome: joinMissing, err: err}
	default:
		return join{id: id, outcome: joinFailed, err: err}
	}
}

// lookupAll fans out one lookup per id with bounded concurrency. It never
// fails; each slot carries its own outcome.
func (r *Resolver) lookupAll(ctx context.Context, ids []string) []join {
	joins := make([]join, len(ids))
	var g errgroup.Group
	g.SetLimit(maxObserverLookups)
	for i, id := range ids {
		g.Go(func() error {
			joins[i] = r.lookup(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return joins
}

func (r *Resolver) collectObservers(taskID string, joins []join) []*domain.User {
	seen := make(map[string]struct{}, len(joins))
	users := make([]*domain.User, 0, len(joins))
	for _, j := range joins {
		switch j.outcome {
		case joinResolved:
			if _, dup := seen[j.user.ID]; dup {
				continue
			}
			seen[j.user.ID] = struct{}{}
			users = append(users, j.user)
		case joinMissing:
			metrics.ObserversDroppedTotal.WithLabelValues("missing").Inc()
			r.log.Debug().Str("task_id", taskID).Str("observer_id", j.id).Msg("observer not found, dropped")
		case joinFailed:
			metrics.ObserversDroppedTotal.WithLabelValues("failed").Inc()
			r.log.Warn().Err(j.err).Str("task_id", taskID).Str("observer_id", j.id).Msg("observer lookup failed, dropped")
		}
	}
	slices.SortFunc(users, func(a, b *domain.User) int { return strings.Compare(a.ID, b.ID) })
	return users
}

// mandatory converts a required join into the error that aborts resolution.
func mandatory(role string, j join) error {
	switch j.outcome {
	case joinMissing:
		return fmt.Errorf("%s %q: %w", role, j.id, domain.ErrReferenceNotFound)
	case joinFailed:
		return fmt.Errorf("%s %q: %w", role, j.id, j.err)
	}
	return nil
}
