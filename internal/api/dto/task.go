package dto

import (
	"time"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
)

type CreateTaskRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	// AuthorID is only honoured when the request carries no credentials.
	AuthorID   string `json:"authorId,omitempty"`
	AssigneeID string `json:"assigneeId,omitempty"`
}

// UpdateTaskRequest is a partial update: absent (null) fields are left
// untouched.
type UpdateTaskRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssigneeID  *string `json:"assigneeId,omitempty"`
}

type TaskResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Author      UserResponse   `json:"author"`
	Assignee    *UserResponse  `json:"assignee,omitempty"`
	Observers   []UserResponse `json:"observers"`
}

// ToInput builds the create input. The acting user is the author; the body's
// authorId is the fallback for unauthenticated deployments.
func (r CreateTaskRequest) ToInput(actor *domain.Actor, idempotencyKey string) ports.CreateTaskInput {
	authorID := r.AuthorID
	if actor != nil {
		authorID = actor.ID
	}
	return ports.CreateTaskInput{
		Name:           r.Name,
		Description:    r.Description,
		Status:         domain.TaskStatus(r.Status),
		AuthorID:       authorID,
		AssigneeID:     r.AssigneeID,
		IdempotencyKey: idempotencyKey,
	}
}

func (r UpdateTaskRequest) ToInput() ports.UpdateTaskInput {
	in := ports.UpdateTaskInput{
		Name:        r.Name,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		in.Status = &s
	}
	return in
}

func ToTaskResponse(t *domain.TaskAggregate) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		Observers:   ToUserResponses(t.Observers),
	}
	if t.Author != nil {
		resp.Author = ToUserResponse(t.Author)
	}
	if t.Assignee != nil {
		a := ToUserResponse(t.Assignee)
		resp.Assignee = &a
	}
	return resp
}

func ToTaskResponses(tasks []*domain.TaskAggregate) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}
