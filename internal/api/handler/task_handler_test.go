package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskflow/task-service/internal/api/middleware"
	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/ports"
)

type stubTaskService struct {
	createIn    ports.CreateTaskInput
	updateIn    ports.UpdateTaskInput
	observerArg string
	err         error
}

func sampleAggregate(id string) *domain.TaskAggregate {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.TaskAggregate{
		ID:        id,
		Name:      "write docs",
		Status:    domain.StatusTodo,
		CreatedAt: at,
		UpdatedAt: at,
		Author:    &domain.User{ID: "u1", Username: "alice", Roles: []domain.Role{domain.RoleManager}},
	}
}

func (s *stubTaskService) FindAll(context.Context) ([]*domain.TaskAggregate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.TaskAggregate{sampleAggregate("t1"), sampleAggregate("t2")}, nil
}

func (s *stubTaskService) FindByID(_ context.Context, id string) (*domain.TaskAggregate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return sampleAggregate(id), nil
}

func (s *stubTaskService) Create(_ context.Context, in ports.CreateTaskInput) (*domain.TaskAggregate, error) {
	s.createIn = in
	if s.err != nil {
		return nil, s.err
	}
	return sampleAggregate("new"), nil
}

func (s *stubTaskService) Update(_ context.Context, id string, in ports.UpdateTaskInput) (*domain.TaskAggregate, error) {
	s.updateIn = in
	if s.err != nil {
		return nil, s.err
	}
	return sampleAggregate(id), nil
}

func (s *stubTaskService) Delete(context.Context, string) error { return s.err }

func (s *stubTaskService) AddObserver(_ context.Context, id, observerID string) (*domain.TaskAggregate, error) {
	s.observerArg = observerID
	if s.err != nil {
		return nil, s.err
	}
	return sampleAggregate(id), nil
}

func TestTaskHandler_Create_ActorIsAuthor(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{}
	h := NewTaskHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/tasks", `{"name":"write docs","authorId":"spoofed","assigneeId":"u2"}`)
	req.Header.Set("Idempotency-Key", "req-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetActor(c, &domain.Actor{ID: "u1", Roles: []domain.Role{domain.RoleManager}})

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.createIn.AuthorID != "u1" || stub.createIn.AssigneeID != "u2" || stub.createIn.IdempotencyKey != "req-1" {
		t.Fatalf("unexpected input: %+v", stub.createIn)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	author, ok := resp["author"].(map[string]any)
	if !ok || author["id"] != "u1" {
		t.Fatalf("unexpected author: %v", resp["author"])
	}
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{})

	for _, body := range []string{`{"description":"no name"}`, `{"name":"x","status":"LATER"}`} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/tasks", body), httptest.NewRecorder())
		if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestTaskHandler_Update_PassesOnlySuppliedFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{}
	h := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/tasks/t1", `{"status":"DONE"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.updateIn.Status == nil || *stub.updateIn.Status != domain.StatusDone {
		t.Fatalf("status not passed: %+v", stub.updateIn)
	}
	if stub.updateIn.Name != nil || stub.updateIn.Description != nil || stub.updateIn.AssigneeID != nil {
		t.Fatalf("absent fields must stay nil: %+v", stub.updateIn)
	}
}

func TestTaskHandler_Observe(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{}
	h := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/tasks/t1/observe", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	middleware.SetActor(c, &domain.Actor{ID: "u7", Roles: []domain.Role{domain.RoleUser}})

	if err := h.Observe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.observerArg != "u7" {
		t.Fatalf("expected caller as observer, got %q", stub.observerArg)
	}

	anon := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/tasks/t1/observe", nil), httptest.NewRecorder())
	if err := h.Observe(anon); !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
}

func TestTaskHandler_AddObserver_UsesPathParam(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{}
	h := NewTaskHandler(stub)

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/tasks/t1/addObserver/u9", nil), httptest.NewRecorder())
	c.SetParamNames("id", "observerId")
	c.SetParamValues("t1", "u9")

	if err := h.AddObserver(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.observerArg != "u9" {
		t.Fatalf("expected u9, got %q", stub.observerArg)
	}
}

func TestTaskHandler_PropagatesServiceErrors(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{err: domain.ErrTaskNotFound})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/tasks/t1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
