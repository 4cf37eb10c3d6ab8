package functions

import (
	"testing"

	"github.com/taskflow/task-service/internal/core/policy"
)

func TestRoutes_CoverPolicyTable(t *testing.T) {
	routes := Routes(nil, nil, true)

	have := make(map[[2]string]bool, len(routes))
	for _, r := range routes {
		key := [2]string{r.Method, r.Path}
		if have[key] {
			t.Fatalf("duplicate route %s %s", r.Method, r.Path)
		}
		have[key] = true
		if r.Handler == nil {
			t.Fatalf("route %s %s has no handler", r.Method, r.Path)
		}
	}

	for _, rule := range policy.DefaultRules() {
		if !have[[2]string{rule.Method, rule.Shape}] {
			t.Fatalf("policy rule %s %s has no route", rule.Method, rule.Shape)
		}
	}
	if len(routes) != len(policy.DefaultRules()) {
		t.Fatalf("expected %d routes, got %d", len(policy.DefaultRules()), len(routes))
	}
}

func TestRoutes_AnonymousObserveIsOptIn(t *testing.T) {
	for _, r := range Routes(nil, nil, false) {
		if r.Path == policy.ShapeAddObserver {
			t.Fatal("add-observer route must be absent unless enabled")
		}
	}
}
