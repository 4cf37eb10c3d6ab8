package ports

import "context"

// IdempotencyStore remembers which task a client-supplied Idempotency-Key
// produced, so a retried create returns the original task.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (taskID string, found bool, err error)
	Remember(ctx context.Context, key, taskID string) error
}
