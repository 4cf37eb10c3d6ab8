package domain

import (
	"errors"
	"testing"
)

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{StatusTodo, StatusInProgress, StatusDone} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "todo", "CANCELLED"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestTask_AddObserverIsSetInsertion(t *testing.T) {
	task := &Task{}
	if !task.AddObserver("u1") {
		t.Fatal("first insert must report true")
	}
	if task.AddObserver("u1") {
		t.Fatal("second insert of the same id must report false")
	}
	task.AddObserver("u2")
	if len(task.ObserverIDs) != 2 {
		t.Fatalf("expected 2 observers, got %v", task.ObserverIDs)
	}
}

func TestTask_CloneDoesNotShareObservers(t *testing.T) {
	orig := &Task{ID: "t1", ObserverIDs: []string{"u1"}}
	c := orig.Clone()
	c.AddObserver("u2")
	if len(orig.ObserverIDs) != 1 {
		t.Fatalf("clone mutated original: %v", orig.ObserverIDs)
	}
}

func TestActor_HasAnyRole(t *testing.T) {
	var nilActor *Actor
	if nilActor.HasAnyRole(RoleUser) {
		t.Fatal("nil actor has no roles")
	}
	a := &Actor{Roles: []Role{RoleUser}}
	if !a.HasAnyRole(RoleManager, RoleUser) {
		t.Fatal("expected USER to match")
	}
	if a.HasAnyRole(RoleManager) {
		t.Fatal("USER must not match MANAGER")
	}
}

func TestNotFoundKinds(t *testing.T) {
	if !errors.Is(ErrTaskNotFound, ErrNotFound) || !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Fatal("task and user not-found errors must share the ErrNotFound kind")
	}
	if !errors.Is(Validationf("name is required"), ErrValidation) {
		t.Fatal("Validationf must wrap ErrValidation")
	}
}
