package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-service/internal/api/middleware"
	"github.com/taskflow/task-service/internal/core/domain"
)

// requireActor returns the authenticated actor or fails fast for operations
// that act on the caller's own identity.
func requireActor(c echo.Context) (*domain.Actor, error) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	return actor, nil
}
