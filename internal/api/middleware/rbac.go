package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-service/internal/core/policy"
)

// Authorize enforces the access policy. The path shape is the matched route
// template with the surface prefix removed, so every surface mounted under a
// different prefix shares the same policy table.
func Authorize(p *policy.Policy, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			shape := strings.TrimPrefix(c.Path(), prefix)
			if err := p.Authorize(c.Request().Method, shape, ActorFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
