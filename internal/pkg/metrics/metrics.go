// Package metrics defines and registers all custom Prometheus metrics for the
// taskflow service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; the /metrics endpoint exposes them alongside the HTTP
// request metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskflow"

// ── Resolution metrics ────────────────────────────────────────────────────────

// TaskResolutionDuration measures how long hydrating a single task takes.
// Label:
//   - outcome: "ok" or "error"
var TaskResolutionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_resolution_duration_seconds",
		Help:      "Duration of resolving a task's user references.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ObserversDroppedTotal counts observer ids left out of a hydrated task.
// Label:
//   - reason: "missing" (no such user) or "failed" (store error)
var ObserversDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observers_dropped_total",
		Help:      "Total number of observer references that could not be resolved.",
	},
	[]string{"reason"},
)

// TasksOmittedTotal counts tasks left out of a listing because their author
// or assignee no longer exists.
var TasksOmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_omitted_total",
		Help:      "Total number of tasks left out of a listing due to a dangling user reference.",
	},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// TaskMutationsTotal counts task mutations.
// Labels:
//   - operation: "create", "update", "delete", "add_observer"
//   - outcome: "ok" or "error"
var TaskMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_mutations_total",
		Help:      "Total number of task mutations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// VersionConflictsTotal counts optimistic-concurrency retries.
var VersionConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_version_conflicts_total",
		Help:      "Total number of task writes retried after a version conflict.",
	},
)

// IdempotentReplaysTotal counts creates answered from a previous Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_idempotent_replays_total",
		Help:      "Total number of task creates replayed from an idempotency key.",
	},
)

// MutationQueueDepth tracks pending mutations in each serializer worker.
// Label:
//   - worker_id: numeric worker index
var MutationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mutation_queue_depth",
		Help:      "Current number of task mutations pending in each serializer worker.",
	},
	[]string{"worker_id"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDecisionsTotal counts authorization policy decisions.
// Label:
//   - outcome: "allowed", "unauthenticated", or "denied"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by outcome.",
	},
	[]string{"outcome"},
)
