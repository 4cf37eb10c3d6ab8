package domain

import (
	"slices"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is the stored (flat) form. Users are referenced by id only.
type Task struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Description string     `bson:"description,omitempty"`
	Status      TaskStatus `bson:"status"`
	AuthorID    string     `bson:"author_id"`
	AssigneeID  string     `bson:"assignee_id,omitempty"`
	ObserverIDs []string   `bson:"observer_ids"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	// Version is bumped on every write and guards read-modify-write cycles.
	Version int64 `bson:"version"`
}

// AddObserver inserts id into the observer set. It reports false when id
// was already present.
func (t *Task) AddObserver(id string) bool {
	if slices.Contains(t.ObserverIDs, id) {
		return false
	}
	t.ObserverIDs = append(t.ObserverIDs, id)
	return true
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.ObserverIDs = slices.Clone(t.ObserverIDs)
	return &c
}

// TaskAggregate is the hydrated read model: the stored task with its user
// references resolved. It is computed on read and never persisted.
type TaskAggregate struct {
	ID          string
	Name        string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Author      *User
	Assignee    *User // nil when the task has no assignee
	Observers   []*User
}
