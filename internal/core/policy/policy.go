// Package policy holds the role table that gates every task and user
// operation. Both request surfaces consult the same Policy, keyed by HTTP
// verb and path shape, so a given (verb, shape, actor) always gets the same
// answer.
package policy

import (
	"net/http"
	"sort"

	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/pkg/metrics"
)

// Path shapes are route templates relative to a surface prefix.
const (
	ShapeUsers       = "/users"
	ShapeUser        = "/users/:id"
	ShapeTasks       = "/tasks"
	ShapeTask        = "/tasks/:id"
	ShapeObserve     = "/tasks/:id/observe"
	ShapeAddObserver = "/tasks/:id/addObserver/:observerId"
)

// Rule grants access to one (verb, shape). A public rule admits
// unauthenticated callers; otherwise the actor needs one of Roles.
type Rule struct {
	Method string
	Shape  string
	Public bool
	Roles  []domain.Role
}

type key struct{ method, shape string }

type Policy struct {
	rules map[key]Rule
}

var (
	anyone   = []domain.Role{domain.RoleUser, domain.RoleManager}
	managers = []domain.Role{domain.RoleManager}
)

// DefaultRules is the access table of the service.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodGet, Shape: ShapeUsers, Roles: anyone},
		{Method: http.MethodGet, Shape: ShapeUser, Roles: anyone},
		{Method: http.MethodPost, Shape: ShapeUsers, Public: true},
		{Method: http.MethodPut, Shape: ShapeUser, Roles: anyone},
		{Method: http.MethodDelete, Shape: ShapeUser, Roles: anyone},

		{Method: http.MethodGet, Shape: ShapeTasks, Roles: anyone},
		{Method: http.MethodGet, Shape: ShapeTask, Roles: anyone},
		{Method: http.MethodPost, Shape: ShapeTasks, Roles: managers},
		{Method: http.MethodPut, Shape: ShapeTask, Roles: managers},
		{Method: http.MethodDelete, Shape: ShapeTask, Roles: managers},
		{Method: http.MethodPost, Shape: ShapeObserve, Roles: anyone},
		{Method: http.MethodPost, Shape: ShapeAddObserver, Public: true},
	}
}

// Default returns a Policy over DefaultRules.
func Default() *Policy {
	return New(DefaultRules()...)
}

func New(rules ...Rule) *Policy {
	p := &Policy{rules: make(map[key]Rule, len(rules))}
	for _, r := range rules {
		p.rules[key{r.Method, r.Shape}] = r
	}
	return p
}

// Authorize decides whether actor may call method on shape. actor is nil for
// unauthenticated requests. Unknown (method, shape) pairs are denied.
func (p *Policy) Authorize(method, shape string, actor *domain.Actor) error {
	err := p.decide(method, shape, actor)
	switch err {
	case nil:
		metrics.AuthzDecisionsTotal.WithLabelValues("allowed").Inc()
	case domain.ErrAuthenticationRequired:
		metrics.AuthzDecisionsTotal.WithLabelValues("unauthenticated").Inc()
	default:
		metrics.AuthzDecisionsTotal.WithLabelValues("denied").Inc()
	}
	return err
}

func (p *Policy) decide(method, shape string, actor *domain.Actor) error {
	rule, ok := p.rules[key{method, shape}]
	if ok && rule.Public {
		return nil
	}
	if actor == nil {
		return domain.ErrAuthenticationRequired
	}
	if !ok || !actor.HasAnyRole(rule.Roles...) {
		return domain.ErrAuthorizationDenied
	}
	return nil
}

// Rules lists the table sorted by shape then method.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, 0, len(p.rules))
	for _, r := range p.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Shape != out[j].Shape {
			return out[i].Shape < out[j].Shape
		}
		return out[i].Method < out[j].Method
	})
	return out
}
