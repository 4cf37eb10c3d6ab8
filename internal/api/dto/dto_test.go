package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/taskflow/task-service/internal/core/domain"
)

func TestCreateTaskRequest_ActorIsAuthor(t *testing.T) {
	req := CreateTaskRequest{Name: "n", AuthorID: "spoofed"}

	in := req.ToInput(&domain.Actor{ID: "u1"}, "key")
	if in.AuthorID != "u1" {
		t.Fatalf("expected actor to be author, got %q", in.AuthorID)
	}
	if in.IdempotencyKey != "key" {
		t.Fatalf("idempotency key lost: %+v", in)
	}

	anon := req.ToInput(nil, "")
	if anon.AuthorID != "spoofed" {
		t.Fatalf("expected body author without actor, got %q", anon.AuthorID)
	}
}

func TestUpdateTaskRequest_KeepsAbsentFieldsNil(t *testing.T) {
	var req UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"status":"DONE","description":null}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	in := req.ToInput()
	if in.Status == nil || *in.Status != domain.StatusDone {
		t.Fatalf("status not mapped: %+v", in)
	}
	if in.Name != nil || in.Description != nil || in.AssigneeID != nil {
		t.Fatalf("absent fields must stay nil: %+v", in)
	}
}

func TestToTaskResponse_WireShape(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := ToTaskResponse(&domain.TaskAggregate{
		ID:        "t1",
		Name:      "n",
		Status:    domain.StatusTodo,
		CreatedAt: at,
		UpdatedAt: at,
		Author:    &domain.User{ID: "u1", Username: "alice", Password: "digest", Roles: []domain.Role{domain.RoleManager}},
		Observers: []*domain.User{},
	})

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"createdAt"`, `"updatedAt"`, `"observers":[]`, `"roles":["MANAGER"]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
	for _, banned := range []string{"digest", "password", `"assignee"`} {
		if strings.Contains(body, banned) {
			t.Fatalf("unexpected %s in %s", banned, body)
		}
	}
}

func TestToRoles_NilMeansNotSupplied(t *testing.T) {
	if got := (UpdateUserRequest{}).ToInput().Roles; got != nil {
		t.Fatalf("expected nil roles, got %v", got)
	}
	got := (CreateUserRequest{Roles: []string{"MANAGER"}}).ToInput().Roles
	if len(got) != 1 || got[0] != domain.RoleManager {
		t.Fatalf("unexpected roles: %v", got)
	}
}
