package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-service/internal/api/dto"
	"github.com/taskflow/task-service/internal/api/middleware"
	"github.com/taskflow/task-service/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every task in a
// response is hydrated with its author, assignee and observers.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      200  {array}   dto.TaskResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	tasks, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// Create handles POST /api/tasks. The caller becomes the author. A repeated
// Idempotency-Key returns the task created by the first request.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Client key for safe retries"
// @Param        body             body      dto.CreateTaskRequest  true   "Task details"
// @Success      201              {object}  dto.TaskResponse
// @Failure      403              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}

	input := req.ToInput(middleware.ActorFrom(c), c.Request().Header.Get(dto.HeaderIdempotencyKey))
	task, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// Update handles PUT /api/tasks/:id. Only the supplied fields change.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  dto.TaskResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Observe handles POST /api/tasks/:id/observe; the caller becomes an observer.
//
// @Summary      Observe a task
// @Tags         tasks
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id}/observe [post]
func (h *TaskHandler) Observe(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	task, err := h.service.AddObserver(c.Request().Context(), c.Param("id"), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// AddObserver handles POST /api/tasks/:id/addObserver/:observerId, the
// unauthenticated variant enabled by ANONYMOUS_OBSERVE.
//
// @Summary      Add an observer to a task
// @Tags         tasks
// @Produce      json
// @Param        id          path      string  true  "Task ID"
// @Param        observerId  path      string  true  "User ID of the observer"
// @Success      200         {object}  dto.TaskResponse
// @Failure      404         {object}  map[string]string
// @Router       /api/tasks/{id}/addObserver/{observerId} [post]
func (h *TaskHandler) AddObserver(c echo.Context) error {
	task, err := h.service.AddObserver(c.Request().Context(), c.Param("id"), c.Param("observerId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}
