// Package functions exposes users and tasks as a declarative route table:
// each entry is a verb, a path shape and a handler function. The table is
// mounted under its own prefix and shares the access policy with the
// endpoint handlers.
package functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-service/internal/api/dto"
	"github.com/taskflow/task-service/internal/api/middleware"
	"github.com/taskflow/task-service/internal/core/domain"
	"github.com/taskflow/task-service/internal/core/policy"
	"github.com/taskflow/task-service/internal/core/ports"
)

// Route binds one verb and path shape to a handler.
type Route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
}

// Routes builds the table. The anonymous add-observer route is only present
// when anonymousObserve is set.
func Routes(users ports.UserService, tasks ports.TaskService, anonymousObserve bool) []Route {
	routes := []Route{
		{http.MethodGet, policy.ShapeUsers, listUsers(users)},
		{http.MethodGet, policy.ShapeUser, getUser(users)},
		{http.MethodPost, policy.ShapeUsers, createUser(users)},
		{http.MethodPut, policy.ShapeUser, updateUser(users)},
		{http.MethodDelete, policy.ShapeUser, deleteUser(users)},

		{http.MethodGet, policy.ShapeTasks, listTasks(tasks)},
		{http.MethodGet, policy.ShapeTask, getTask(tasks)},
		{http.MethodPost, policy.ShapeTasks, createTask(tasks)},
		{http.MethodPut, policy.ShapeTask, updateTask(tasks)},
		{http.MethodDelete, policy.ShapeTask, deleteTask(tasks)},
		{http.MethodPost, policy.ShapeObserve, observeTask(tasks)},
	}
	if anonymousObserve {
		routes = append(routes, Route{http.MethodPost, policy.ShapeAddObserver, addObserver(tasks)})
	}
	return routes
}

// Mount registers every route on g.
func Mount(g *echo.Group, routes []Route) {
	for _, r := range routes {
		g.Add(r.Method, r.Path, r.Handler)
	}
}

// ── users ─────────────────────────────────────────────────────────────────────

func listUsers(svc ports.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := svc.FindAll(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToUserResponses(users))
	}
}

func getUser(svc ports.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := svc.FindByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToUserResponse(user))
	}
}

func createUser(svc ports.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
		user, err := svc.Create(c.Request().Context(), req.ToInput())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, dto.ToUserResponse(user))
	}
}

func updateUser(svc ports.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.UpdateUserRequest
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
		user, err := svc.Update(c.Request().Context(), c.Param("id"), req.ToInput())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToUserResponse(user))
	}
}

func deleteUser(svc ports.UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// ── tasks ─────────────────────────────────────────────────────────────────────

func listTasks(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks, err := svc.FindAll(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
	}
}

func getTask(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := svc.FindByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
	}
}

func createTask(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateTaskRequest
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
		input := req.ToInput(middleware.ActorFrom(c), c.Request().Header.Get(dto.HeaderIdempotencyKey))
		task, err := svc.Create(c.Request().Context(), input)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
	}
}

func updateTask(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.UpdateTaskRequest
		if err := dto.Bind(c, &req); err != nil {
			return err
		}
		task, err := svc.Update(c.Request().Context(), c.Param("id"), req.ToInput())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
	}
}

func deleteTask(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func observeTask(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := middleware.ActorFrom(c)
		if actor == nil {
			return domain.ErrAuthenticationRequired
		}
		task, err := svc.AddObserver(c.Request().Context(), c.Param("id"), actor.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
	}
}

func addObserver(svc ports.TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := svc.AddObserver(c.Request().Context(), c.Param("id"), c.Param("observerId"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
	}
}
